package valkey

import (
	"context"
	"fmt"
)

// EventLog implements ports.EventLog as capped Valkey lists.
type EventLog struct {
	*Client
}

// NewEventLog wraps c as a bounded, newest-first log.
func NewEventLog(c *Client) *EventLog {
	return &EventLog{Client: c}
}

// Push prepends entry and trims the list to capacity in one round trip.
func (l *EventLog) Push(ctx context.Context, key string, entry []byte, capacity int) error {
	if capacity <= 0 {
		return fmt.Errorf("event log %q: capacity must be positive", key)
	}
	cmds := l.client.DoMulti(ctx,
		l.client.B().Lpush().Key(key).Element(string(entry)).Build(),
		l.client.B().Ltrim().Key(key).Start(0).Stop(int64(capacity-1)).Build(),
	)
	for _, r := range cmds {
		if err := r.Error(); err != nil {
			return fmt.Errorf("event log %q: %w", key, err)
		}
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *EventLog) Recent(ctx context.Context, key string, limit int) ([][]byte, error) {
	if limit <= 0 {
		return [][]byte{}, nil
	}
	vals, err := l.client.Do(ctx,
		l.client.B().Lrange().Key(key).Start(0).Stop(int64(limit-1)).Build(),
	).AsStrSlice()
	if err != nil {
		return nil, fmt.Errorf("event log %q: %w", key, err)
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}
