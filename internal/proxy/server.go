package proxy

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matst80/wsrelay/internal/httpx"
	"github.com/matst80/wsrelay/internal/obs"
	"github.com/matst80/wsrelay/internal/ratelimit"
	"github.com/matst80/wsrelay/internal/state"
)

// Server accepts browser WebSocket upgrades and bridges each one to the
// upstream named in its query string, injecting the auth header the browser
// cannot set itself. Upgrade requests are tunneled, GET /health answers
// liveness probes, everything else is 404.
type Server struct {
	cfg     Config
	store   state.Store
	limiter *ratelimit.Limiter

	upgrader websocket.Upgrader
	dialer   websocket.Dialer

	wg sync.WaitGroup
}

func New(cfg Config, store state.Store) *Server {
	if cfg.AuthHeader == "" {
		cfg.AuthHeader = DefaultAuthHeader
	}
	s := &Server{
		cfg:     cfg,
		store:   store,
		limiter: ratelimit.NewLimiter(cfg.HandshakeRate, cfg.HandshakeBurst),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		// origin policy is enforced by validate before Upgrade runs
		CheckOrigin: func(*http.Request) bool { return true },
	}
	s.dialer = websocket.Dialer{Proxy: http.ProxyFromEnvironment}
	if cfg.InsecureUpstreamTLS {
		s.dialer.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.tunnel(w, r)
		return
	}
	if r.URL.Path == "/health" && r.Method == http.MethodGet {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"status": "ok", "timestamp": time.Now().UnixMilli()})
		return
	}
	http.NotFound(w, r)
}

func (s *Server) tunnel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	obs.Info("session.attempt", obs.Fields{
		"remote":     r.RemoteAddr,
		"origin":     r.Header.Get("Origin"),
		"token":      httpx.MaskSecret(q.Get("token")),
		"has_token":  q.Get("token") != "",
		"has_server": q.Get("server") != "",
	})

	if !s.limiter.Allow(remoteIP(r)) {
		obs.Warn("session.ratelimited", obs.Fields{"remote": r.RemoteAddr})
		obs.RejectsTotal.WithLabelValues("rate_limited").Inc()
		s.reject(w, http.StatusTooManyRequests, "Too many requests")
		return
	}

	acc, rej := validate(r, s.cfg.AllowedOrigins)
	if rej != nil {
		obs.Info("session.reject", obs.Fields{"remote": r.RemoteAddr, "status": rej.Status, "reason": rej.Reason})
		obs.RejectsTotal.WithLabelValues(rej.label).Inc()
		s.reject(w, rej.Status, rej.Reason)
		return
	}

	clientConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error to the client
		obs.Error("session.upgrade", obs.Fields{"remote": r.RemoteAddr, "err": err.Error()})
		return
	}

	sess := &session{
		id:        uuid.NewString(),
		target:    acc.UpstreamURL,
		client:    clientConn,
		store:     s.store,
		startedAt: time.Now(),
	}
	if err := s.store.Add(state.SessionInfo{ID: sess.id, RemoteAddr: r.RemoteAddr, Upstream: acc.UpstreamURL, StartedAt: sess.startedAt}); err != nil {
		obs.Warn("session.register", obs.Fields{"session": sess.id, "err": err.Error()})
	}
	obs.SessionsTotal.Inc()
	obs.ActiveSessions.Inc()
	obs.Info("session.accept", obs.Fields{"session": sess.id, "remote": r.RemoteAddr, "url": acc.UpstreamURL, "subprotocols": acc.Subprotocols})

	header := http.Header{}
	header.Set(s.cfg.AuthHeader, acc.Token)
	dialer := s.dialer
	dialer.Subprotocols = acc.Subprotocols

	s.wg.Add(1)
	defer s.wg.Done()
	defer func() {
		s.store.Remove(sess.id)
		obs.ActiveSessions.Dec()
	}()
	sess.run(&dialer, header)
}

// reject writes a minimal raw HTTP response on the hijacked connection and
// force-closes it, so the client never sees a completed handshake.
func (s *Server) reject(w http.ResponseWriter, status int, reason string) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		http.Error(w, reason, status)
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		http.Error(w, reason, status)
		return
	}
	defer conn.Close()
	if err := httpx.WriteRawResponse(conn, status, reason); err != nil {
		obs.Debug("session.reject.write", obs.Fields{"err": err.Error()})
	}
}

// Drain blocks until every in-flight session has terminated or ctx expires.
func (s *Server) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
