package state

import "time"

// SessionInfo is the per-tunnel record kept by the registry. It exists for
// stats and log correlation only; the data path never reads it.
type SessionInfo struct {
	ID         string    `json:"id"`
	RemoteAddr string    `json:"remote_addr"`
	Upstream   string    `json:"upstream"`
	StartedAt  time.Time `json:"started_at"`
}

// Store abstracts session bookkeeping to allow horizontal scaling: the
// in-memory backend tracks one instance, the Redis backend aggregates
// counters across a fleet. The relay data path holds no reference to it
// beyond add/remove.
type Store interface {
	Add(info SessionInfo) error
	Remove(id string)
	IncUpstreamFailure()

	Active() int
	Totals() (sessions int64, upstreamFailures int64)

	SetReady(ready bool)
	SetClosing(closing bool)
	Ready() bool
	Closing() bool

	Close() error
}
