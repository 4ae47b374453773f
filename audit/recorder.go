package audit

import (
	"context"
	"encoding/json"

	"github.com/kasuganosora/patrolbot/events"
	"github.com/kasuganosora/patrolbot/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const maxQueryLimit = 500

// Recorder persists room events read from a bus subscription.
type Recorder struct {
	db     *gorm.DB
	writer *batchWriter[model.EventLog]
	logger *zap.Logger
}

// NewRecorder creates a Recorder and starts its batch writer.
func NewRecorder(db *gorm.DB, opts Options, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		db:     db,
		writer: newBatchWriter[model.EventLog](db, "event_log", opts, logger),
		logger: logger,
	}
}

// Record enqueues ev for writing.
func (r *Recorder) Record(ev events.Event) {
	var data datatypes.JSON
	if len(ev.Data) > 0 {
		raw, err := json.Marshal(ev.Data)
		if err != nil {
			r.logger.Warn("event data not serialisable", zap.String("kind", ev.Kind), zap.Error(err))
		} else {
			data = datatypes.JSON(raw)
		}
	}
	r.writer.enqueue(&model.EventLog{
		Tick:    ev.Tick,
		Kind:    ev.Kind,
		BotID:   ev.BotID,
		BotName: ev.BotName,
		Data:    data,
	})
}

// Consume records every event published on channel until ctx is done or the
// subscription closes.
func (r *Recorder) Consume(ctx context.Context, bus events.Bus, channel string) error {
	msgs, unsub, err := bus.Subscribe(ctx, channel)
	if err != nil {
		return err
	}
	defer unsub()
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			ev, err := events.Decode(msg.Payload)
			if err != nil {
				r.logger.Warn("undecodable event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			r.Record(ev)
		case <-ctx.Done():
			return nil
		}
	}
}

// Query filters recorded events. Zero fields match everything.
type Query struct {
	BotID     string
	Kind      string
	SinceTick uint64
	Limit     int
}

// Find returns recorded events matching q, newest first.
func (r *Recorder) Find(ctx context.Context, q Query) ([]model.EventLog, error) {
	limit := q.Limit
	if limit <= 0 || limit > maxQueryLimit {
		limit = maxQueryLimit
	}
	tx := r.db.WithContext(ctx).Model(&model.EventLog{})
	if q.BotID != "" {
		tx = tx.Where("bot_id = ?", q.BotID)
	}
	if q.Kind != "" {
		tx = tx.Where("kind = ?", q.Kind)
	}
	if q.SinceTick > 0 {
		tx = tx.Where("tick >= ?", q.SinceTick)
	}
	var out []model.EventLog
	err := tx.Order("tick DESC").Order("id DESC").Limit(limit).Find(&out).Error
	return out, err
}

// Stop flushes pending events and shuts down the writer.
func (r *Recorder) Stop(_ context.Context) {
	r.writer.stop()
}
