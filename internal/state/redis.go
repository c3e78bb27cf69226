package state

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matst80/wsrelay/internal/obs"
)

const (
	keySessions         = "wsrelay:sessions_total"
	keyUpstreamFailures = "wsrelay:upstream_failures_total"
	keySessionPrefix    = "wsrelay:session:"
	sessionKeyTTL       = 24 * time.Hour
)

// redisStore implements Store with fleet-wide counters in Redis. Open sessions
// are still tracked locally because the websocket connections only exist on
// the instance that accepted them; Redis additionally holds a TTL'd record per
// session for cross-instance inspection.
type redisStore struct {
	client     *redis.Client
	instanceID string

	mu       sync.Mutex
	sessions map[string]SessionInfo
	closing  bool
	ready    bool
}

func newRedisStore(addr, password string, db int) (*redisStore, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return &redisStore{
		client:     rdb,
		instanceID: fmt.Sprintf("wsrelay-%d", time.Now().UnixNano()),
		sessions:   make(map[string]SessionInfo),
	}, nil
}

var _ Store = (*redisStore)(nil)

func (r *redisStore) Add(info SessionInfo) error {
	r.mu.Lock()
	if _, exists := r.sessions[info.ID]; exists {
		r.mu.Unlock()
		return fmt.Errorf("session already registered: %s", info.ID)
	}
	r.sessions[info.ID] = info
	r.mu.Unlock()

	ctx := context.Background()
	if err := r.client.Incr(ctx, keySessions).Err(); err != nil {
		obs.Error("redis.incr_sessions", obs.Fields{"err": err.Error()})
	}
	data, err := json.Marshal(struct {
		SessionInfo
		Instance string `json:"instance"`
	}{info, r.instanceID})
	if err != nil {
		return fmt.Errorf("marshal session record: %w", err)
	}
	if err := r.client.Set(ctx, keySessionPrefix+info.ID, data, sessionKeyTTL).Err(); err != nil {
		obs.Error("redis.set_session", obs.Fields{"err": err.Error(), "session": info.ID})
	}
	return nil
}

func (r *redisStore) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	if err := r.client.Del(context.Background(), keySessionPrefix+id).Err(); err != nil {
		obs.Error("redis.del_session", obs.Fields{"err": err.Error(), "session": id})
	}
}

func (r *redisStore) IncUpstreamFailure() {
	if err := r.client.Incr(context.Background(), keyUpstreamFailures).Err(); err != nil {
		obs.Error("redis.incr_failures", obs.Fields{"err": err.Error()})
	}
}

func (r *redisStore) Active() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *redisStore) Totals() (int64, int64) {
	ctx := context.Background()
	sessions, err := r.client.Get(ctx, keySessions).Int64()
	if err != nil && err != redis.Nil {
		obs.Error("redis.get_sessions", obs.Fields{"err": err.Error()})
	}
	failures, err := r.client.Get(ctx, keyUpstreamFailures).Int64()
	if err != nil && err != redis.Nil {
		obs.Error("redis.get_failures", obs.Fields{"err": err.Error()})
	}
	return sessions, failures
}

func (r *redisStore) SetReady(ready bool)     { r.mu.Lock(); r.ready = ready; r.mu.Unlock() }
func (r *redisStore) SetClosing(closing bool) { r.mu.Lock(); r.closing = closing; r.mu.Unlock() }
func (r *redisStore) Ready() bool             { r.mu.Lock(); defer r.mu.Unlock(); return r.ready }
func (r *redisStore) Closing() bool           { r.mu.Lock(); defer r.mu.Unlock(); return r.closing }

func (r *redisStore) Close() error { return r.client.Close() }
