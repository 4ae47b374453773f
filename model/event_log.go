package model

import (
	"time"

	"gorm.io/datatypes"
)

// EventLog is one persisted room event.
type EventLog struct {
	ID        int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Tick      uint64         `gorm:"index:idx_event_tick;not null" json:"tick"`
	Kind      string         `gorm:"index:idx_event_kind;size:32;not null" json:"kind"`
	BotID     string         `gorm:"index:idx_event_bot;size:36" json:"bot_id,omitempty"`
	BotName   string         `gorm:"size:64" json:"bot_name,omitempty"`
	Data      datatypes.JSON `json:"data,omitempty"`
	CreatedAt time.Time      `gorm:"index:idx_event_created;autoCreateTime:milli" json:"created_at"`
}
