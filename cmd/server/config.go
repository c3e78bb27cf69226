package main

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration. Flags win over WSRELAY_* environment
// variables, which win over the defaults, so container deployments can run
// with no arguments at all.
type Config struct {
	ListenAddr          string
	OpsAddr             string
	AllowedOrigins      string
	AuthHeader          string
	Debug               bool
	InsecureUpstreamTLS bool
	HandshakeRate       int
	HandshakeBurst      int
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	GracePeriod         time.Duration
}

var cfg Config

// init registers flags into the global flag set. main() simply parses and uses cfg.
func init() {
	flag.StringVar(&cfg.ListenAddr, "listen", envStr("WSRELAY_LISTEN", ":8080"), "proxy listen address")
	flag.StringVar(&cfg.OpsAddr, "ops", envStr("WSRELAY_OPS", ":9100"), "metrics, stats and probe listen address")
	flag.StringVar(&cfg.AllowedOrigins, "origins", envStr("WSRELAY_ORIGINS", ""), "comma separated origin allow-list; empty allows all, * matches any origin")
	flag.StringVar(&cfg.AuthHeader, "auth-header", envStr("WSRELAY_AUTH_HEADER", ""), "header injected on the upstream handshake (default X-Auth-Token)")
	flag.BoolVar(&cfg.Debug, "debug", envBool("WSRELAY_DEBUG", false), "enable debug logs, including per-frame logging")
	flag.BoolVar(&cfg.InsecureUpstreamTLS, "insecure-upstream-tls", envBool("WSRELAY_INSECURE_UPSTREAM_TLS", false), "skip upstream certificate verification (development only)")
	flag.IntVar(&cfg.HandshakeRate, "handshake-rate", envInt("WSRELAY_HANDSHAKE_RATE", 0), "per-address upgrade attempts per second; 0 disables limiting")
	flag.IntVar(&cfg.HandshakeBurst, "handshake-burst", envInt("WSRELAY_HANDSHAKE_BURST", 0), "per-address upgrade burst")
	flag.StringVar(&cfg.RedisAddr, "redis", envStr("WSRELAY_REDIS", ""), "redis address for fleet-wide session stats; empty keeps stats in memory")
	flag.StringVar(&cfg.RedisPassword, "redis-password", envStr("WSRELAY_REDIS_PASSWORD", ""), "redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", envInt("WSRELAY_REDIS_DB", 0), "redis database")
	flag.DurationVar(&cfg.GracePeriod, "grace-period", envDuration("WSRELAY_GRACE_PERIOD", 10*time.Second), "time to let in-flight sessions drain after a shutdown signal")
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// splitOrigins turns the comma separated allow-list into trimmed entries.
func splitOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
