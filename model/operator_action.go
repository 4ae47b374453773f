package model

import (
	"time"

	"gorm.io/datatypes"
)

// OperatorAction records a state change made through the debug API.
type OperatorAction struct {
	ID         int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	TraceID    string         `gorm:"index:idx_action_trace;size:36;not null" json:"trace_id"`
	Operator   string         `gorm:"size:64" json:"operator"`
	Action     string         `gorm:"size:64;not null" json:"action"`
	BotID      string         `gorm:"index:idx_action_bot;size:36" json:"bot_id,omitempty"`
	Request    datatypes.JSON `json:"request"`
	Response   datatypes.JSON `json:"response"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	IP         string         `gorm:"size:45" json:"ip"`
	DurationMs int            `json:"duration_ms"`
	CreatedAt  time.Time      `gorm:"index:idx_action_created;autoCreateTime:milli" json:"created_at"`
}
