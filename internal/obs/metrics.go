package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveSessions         = promauto.NewGauge(prometheus.GaugeOpts{Name: "wsrelay_active_sessions", Help: "Currently open tunnel sessions"})
	SessionsTotal          = promauto.NewCounter(prometheus.CounterOpts{Name: "wsrelay_sessions_total", Help: "Tunnel sessions accepted"})
	RejectsTotal           = promauto.NewCounterVec(prometheus.CounterOpts{Name: "wsrelay_rejects_total", Help: "Upgrade requests rejected before a session existed, by reason"}, []string{"reason"})
	UpstreamFailuresTotal  = promauto.NewCounter(prometheus.CounterOpts{Name: "wsrelay_upstream_failures_total", Help: "Upstream handshakes that never opened"})
	FramesForwardedTotal   = promauto.NewCounterVec(prometheus.CounterOpts{Name: "wsrelay_frames_forwarded_total", Help: "Frames relayed by direction"}, []string{"direction"})
	BytesForwardedTotal    = promauto.NewCounterVec(prometheus.CounterOpts{Name: "wsrelay_bytes_forwarded_total", Help: "Payload bytes relayed by direction"}, []string{"direction"})
	FramesBufferedTotal    = promauto.NewCounter(prometheus.CounterOpts{Name: "wsrelay_frames_buffered_total", Help: "Client frames queued while the upstream leg was still connecting"})
	SessionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{Name: "wsrelay_session_duration_seconds", Help: "Session lifetime seconds", Buckets: prometheus.ExponentialBuckets(0.01, 2, 16)})
)
