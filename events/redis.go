package events

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisBus publishes room events through Redis PUBLISH/SUBSCRIBE so tools in
// other processes can follow a room.
type RedisBus struct {
	client  *goredis.Client
	bufSize int
}

// NewRedisBus connects to cfg.RedisAddr and verifies the connection.
func NewRedisBus(cfg Config) (*RedisBus, error) {
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: timeout,
	})
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	bufSize := cfg.Buffer
	if bufSize <= 0 {
		bufSize = defaultBuffer
	}
	return &RedisBus{client: client, bufSize: bufSize}, nil
}

func (r *RedisBus) Publish(ctx context.Context, channel, message string) error {
	return r.client.Publish(ctx, channel, message).Err()
}

func (r *RedisBus) Subscribe(ctx context.Context, channels ...string) (<-chan *Message, func(), error) {
	ps := r.client.Subscribe(ctx, channels...)
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, nil, err
	}
	ch := make(chan *Message, r.bufSize)
	go func() {
		defer close(ch)
		for msg := range ps.Channel() {
			ch <- &Message{Channel: msg.Channel, Payload: msg.Payload}
		}
	}()
	cancel := func() {
		_ = ps.Close()
	}
	return ch, cancel, nil
}

// Close releases the Redis connection pool.
func (r *RedisBus) Close() error {
	return r.client.Close()
}
