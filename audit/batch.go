package audit

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultFlushEvery = 2 * time.Second
	defaultBatchSize  = 100
	queueSize         = 1024
)

// Options tunes the batch writer.
type Options struct {
	FlushEvery time.Duration
	BatchSize  int
}

func (o Options) withDefaults() Options {
	if o.FlushEvery <= 0 {
		o.FlushEvery = defaultFlushEvery
	}
	if o.BatchSize <= 0 {
		o.BatchSize = defaultBatchSize
	}
	return o
}

// batchWriter inserts records of type T in batches from a background worker.
type batchWriter[T any] struct {
	db     *gorm.DB
	ch     chan *T
	stopCh chan struct{}
	wg     sync.WaitGroup
	opts   Options
	name   string
	logger *zap.Logger
}

func newBatchWriter[T any](db *gorm.DB, name string, opts Options, logger *zap.Logger) *batchWriter[T] {
	w := &batchWriter[T]{
		db:     db,
		ch:     make(chan *T, queueSize),
		stopCh: make(chan struct{}),
		opts:   opts.withDefaults(),
		name:   name,
		logger: logger,
	}
	w.wg.Add(1)
	go w.worker()
	return w
}

func (w *batchWriter[T]) enqueue(record *T) bool {
	select {
	case w.ch <- record:
		return true
	default:
		w.logger.Warn("audit channel full, dropping entry", zap.String("writer", w.name))
		return false
	}
}

// stop flushes remaining records and blocks until the worker has finished.
func (w *batchWriter[T]) stop() {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	w.wg.Wait()
}

func (w *batchWriter[T]) worker() {
	defer w.wg.Done()
	ticker := time.NewTicker(w.opts.FlushEvery)
	defer ticker.Stop()

	batch := make([]*T, 0, w.opts.BatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := w.db.Create(&batch).Error; err != nil {
			w.logger.Error("audit batch write failed", zap.String("writer", w.name), zap.Int("records", len(batch)), zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case record := <-w.ch:
			batch = append(batch, record)
			if len(batch) >= w.opts.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-w.stopCh:
			for {
				select {
				case record := <-w.ch:
					batch = append(batch, record)
				default:
					flush()
					return
				}
			}
		}
	}
}
