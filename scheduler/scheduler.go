package scheduler

import (
	"sort"
	"sync"

	"go.uber.org/zap"
)

// TaskFn is the function signature for scheduled tasks.
type TaskFn func()

// Key identifies a single-shot delay: one outstanding entry per owner and kind.
type Key struct {
	Owner string `json:"owner"`
	Kind  string `json:"kind"`
}

// Pending describes an outstanding delay.
type Pending struct {
	Key       Key `json:"key"`
	Remaining int `json:"remaining"`
}

// Scheduler is a tick-counted timer table. Nothing runs on its own: the
// owning game loop calls Advance once per tick and expired tasks run on the
// caller's goroutine.
type Scheduler struct {
	mu      sync.Mutex
	now     uint64
	seq     uint64
	delays  map[Key]*delayEntry
	tickers map[string]*tickerEntry
	logger  *zap.Logger
}

type delayEntry struct {
	remaining int
	seq       uint64
	fn        TaskFn
}

type tickerEntry struct {
	interval  int
	countdown int
	fn        TaskFn
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		delays:  make(map[Key]*delayEntry),
		tickers: make(map[string]*tickerEntry),
		logger:  logger,
	}
}

// AddDelay runs fn once after the given number of ticks.
// It returns false, and leaves the existing entry untouched, when a delay for
// key is already outstanding. Delays cannot be cancelled.
func (s *Scheduler) AddDelay(key Key, ticks int, fn TaskFn) bool {
	if ticks < 1 {
		ticks = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.delays[key]; ok {
		return false
	}
	s.seq++
	s.delays[key] = &delayEntry{remaining: ticks, seq: s.seq, fn: fn}
	return true
}

// AddTicker registers a task to run every interval ticks.
// If a task with the same name exists, it is replaced.
func (s *Scheduler) AddTicker(name string, interval int, fn TaskFn) {
	if interval < 1 {
		interval = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers[name] = &tickerEntry{interval: interval, countdown: interval, fn: fn}
	s.logger.Debug("scheduler ticker registered", zap.String("name", name), zap.Int("interval_ticks", interval))
}

// Remove stops and removes a ticker by name.
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tickers, name)
}

// Advance moves the table forward by one tick and runs everything that
// expired: delays first, in registration order, then tickers by name.
func (s *Scheduler) Advance() {
	s.mu.Lock()
	s.now++
	var due []*delayEntry
	var dueKeys []Key
	for k, e := range s.delays {
		e.remaining--
		if e.remaining <= 0 {
			due = append(due, e)
			dueKeys = append(dueKeys, k)
		}
	}
	for _, k := range dueKeys {
		delete(s.delays, k)
	}
	sort.Slice(due, func(i, j int) bool { return due[i].seq < due[j].seq })

	var names []string
	for name, t := range s.tickers {
		t.countdown--
		if t.countdown <= 0 {
			t.countdown = t.interval
			names = append(names, name)
		}
	}
	sort.Strings(names)
	tickerFns := make([]TaskFn, 0, len(names))
	for _, name := range names {
		tickerFns = append(tickerFns, s.tickers[name].fn)
	}
	s.mu.Unlock()

	for _, e := range due {
		s.run("delay", e.fn)
	}
	for i, fn := range tickerFns {
		s.run(names[i], fn)
	}
}

func (s *Scheduler) run(name string, fn TaskFn) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduler task panicked",
				zap.String("task", name),
				zap.Any("recover", r))
		}
	}()
	fn()
}

// Remaining returns the ticks left on the delay for key.
func (s *Scheduler) Remaining(key Key) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.delays[key]
	if !ok {
		return 0, false
	}
	return e.remaining, true
}

// Pending lists outstanding delays ordered by owner then kind.
func (s *Scheduler) Pending() []Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Pending, 0, len(s.delays))
	for k, e := range s.delays {
		out = append(out, Pending{Key: k, Remaining: e.remaining})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key.Owner != out[j].Key.Owner {
			return out[i].Key.Owner < out[j].Key.Owner
		}
		return out[i].Key.Kind < out[j].Key.Kind
	})
	return out
}

// Now returns the number of ticks advanced so far.
func (s *Scheduler) Now() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// ListTickers returns the names of all registered ticker tasks.
func (s *Scheduler) ListTickers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.tickers))
	for name := range s.tickers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
