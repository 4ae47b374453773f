package events

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const publishTimeout = 2 * time.Second

// Emitter queues events from the game loop and publishes them to a Bus from
// its own goroutine. A full queue drops events instead of stalling a tick.
type Emitter struct {
	bus     Bus
	channel string
	queue   chan Event
	dropped atomic.Uint64
	logger  *zap.Logger
}

// NewEmitter creates an Emitter with a queue of size events.
func NewEmitter(bus Bus, channel string, size int, logger *zap.Logger) *Emitter {
	if channel == "" {
		channel = DefaultChannel
	}
	if size <= 0 {
		size = defaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{bus: bus, channel: channel, queue: make(chan Event, size), logger: logger}
}

// Emit implements Sink.
func (e *Emitter) Emit(ev Event) {
	select {
	case e.queue <- ev:
	default:
		if e.dropped.Add(1) == 1 {
			e.logger.Warn("event queue full, dropping events", zap.String("kind", ev.Kind))
		}
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (e *Emitter) Dropped() uint64 { return e.dropped.Load() }

// Channel returns the bus channel events are published on.
func (e *Emitter) Channel() string { return e.channel }

// Run publishes queued events until ctx is done, then flushes what is left.
func (e *Emitter) Run(ctx context.Context) {
	for {
		select {
		case ev := <-e.queue:
			e.publish(ev)
		case <-ctx.Done():
			e.Flush()
			return
		}
	}
}

// Flush publishes every queued event and returns how many were sent.
func (e *Emitter) Flush() int {
	n := 0
	for {
		select {
		case ev := <-e.queue:
			e.publish(ev)
			n++
		default:
			return n
		}
	}
}

func (e *Emitter) publish(ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		e.logger.Error("event marshal failed", zap.String("kind", ev.Kind), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := e.bus.Publish(ctx, e.channel, string(payload)); err != nil {
		e.logger.Warn("event publish failed", zap.String("kind", ev.Kind), zap.Error(err))
	}
}

// Decode parses a bus payload back into an Event.
func Decode(payload string) (Event, error) {
	var ev Event
	err := json.Unmarshal([]byte(payload), &ev)
	return ev, err
}
