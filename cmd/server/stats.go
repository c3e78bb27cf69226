package main

import (
	"time"

	"github.com/matst80/wsrelay/internal/state"
)

// Stats represents current server stats for dashboards & API.
type Stats struct {
	ActiveSessions   int    `json:"active_sessions"`
	TotalSessions    int64  `json:"total_sessions"`
	UpstreamFailures int64  `json:"upstream_failures"`
	Now              string `json:"now"`
}

func collectStats(s state.Store) Stats {
	total, failures := s.Totals()
	return Stats{
		ActiveSessions:   s.Active(),
		TotalSessions:    total,
		UpstreamFailures: failures,
		Now:              time.Now().UTC().Format(time.RFC3339),
	}
}
