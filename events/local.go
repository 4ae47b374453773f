package events

import (
	"context"
	"sync"
)

const defaultBuffer = 256

type subscriber struct {
	mu     sync.Mutex
	ch     chan *Message
	closed bool
}

func (s *subscriber) send(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- msg:
	default:
		// slow subscriber; drop
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}

// LocalBus is an in-process fan-out bus.
type LocalBus struct {
	mu          sync.RWMutex
	subscribers map[string][]*subscriber
	bufSize     int
}

// NewLocalBus creates a LocalBus with the given per-subscriber buffer size.
func NewLocalBus(bufSize int) *LocalBus {
	if bufSize <= 0 {
		bufSize = defaultBuffer
	}
	return &LocalBus{
		subscribers: make(map[string][]*subscriber),
		bufSize:     bufSize,
	}
}

// Publish sends a message to all subscribers of the given channel without
// blocking.
func (b *LocalBus) Publish(_ context.Context, channel, message string) error {
	msg := &Message{Channel: channel, Payload: message}
	b.mu.RLock()
	subs := append([]*subscriber(nil), b.subscribers[channel]...)
	b.mu.RUnlock()
	for _, s := range subs {
		s.send(msg)
	}
	return nil
}

// Subscribe returns one channel carrying messages from all the given
// channels, and a cancel function that closes it.
func (b *LocalBus) Subscribe(_ context.Context, channels ...string) (<-chan *Message, func(), error) {
	sub := &subscriber{ch: make(chan *Message, b.bufSize)}

	b.mu.Lock()
	for _, c := range channels {
		b.subscribers[c] = append(b.subscribers[c], sub)
	}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			for _, c := range channels {
				list := b.subscribers[c]
				for j, s := range list {
					if s == sub {
						b.subscribers[c] = append(list[:j], list[j+1:]...)
						break
					}
				}
				if len(b.subscribers[c]) == 0 {
					delete(b.subscribers, c)
				}
			}
			b.mu.Unlock()
			sub.close()
		})
	}
	return sub.ch, cancel, nil
}

// Subscribers returns the number of subscriptions on channel.
func (b *LocalBus) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers[channel])
}
