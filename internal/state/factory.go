package state

import "github.com/matst80/wsrelay/internal/obs"

// New creates either an in-memory or Redis-backed session registry based on
// configuration. An empty redisAddr selects the in-memory backend.
func New(redisAddr, redisPassword string, redisDB int) (Store, error) {
	if redisAddr == "" {
		obs.Info("state.backend", obs.Fields{"type": "in-memory"})
		return newMemoryStore(), nil
	}
	obs.Info("state.backend", obs.Fields{"type": "redis", "addr": redisAddr})
	return newRedisStore(redisAddr, redisPassword, redisDB)
}
