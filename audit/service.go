package audit

import (
	"context"
	"encoding/json"

	"github.com/kasuganosora/patrolbot/model"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ActionEntry holds one operator action to be logged.
type ActionEntry struct {
	TraceID    string
	Operator   string
	Action     string
	BotID      string
	Request    interface{}
	Response   interface{}
	Error      string
	IP         string
	DurationMs int
}

// Service logs operator actions asynchronously in batches.
type Service struct {
	writer *batchWriter[model.OperatorAction]
}

// New creates a new audit Service and starts its background worker.
func New(db *gorm.DB, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{writer: newBatchWriter[model.OperatorAction](db, "operator_actions", opts, logger)}
}

// Log enqueues an action for async DB write.
func (svc *Service) Log(entry ActionEntry) {
	reqJSON, _ := json.Marshal(entry.Request)
	respJSON, _ := json.Marshal(entry.Response)
	svc.writer.enqueue(&model.OperatorAction{
		TraceID:    entry.TraceID,
		Operator:   entry.Operator,
		Action:     entry.Action,
		BotID:      entry.BotID,
		Request:    datatypes.JSON(reqJSON),
		Response:   datatypes.JSON(respJSON),
		Error:      entry.Error,
		IP:         entry.IP,
		DurationMs: entry.DurationMs,
	})
}

// Stop flushes remaining entries and shuts down the worker.
func (svc *Service) Stop(_ context.Context) {
	svc.writer.stop()
}
