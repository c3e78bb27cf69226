package proxy

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matst80/wsrelay/internal/obs"
	"github.com/matst80/wsrelay/internal/state"
)

// closeWriteTimeout bounds the close-frame write during teardown.
const closeWriteTimeout = 5 * time.Second

type leg int

const (
	clientLeg leg = iota
	upstreamLeg
)

func (l leg) String() string {
	if l == clientLeg {
		return "client"
	}
	return "upstream"
}

type frame struct {
	messageType int
	data        []byte
}

// session is one client-to-upstream tunnel. Both legs' event streams funnel
// through mu, which guards the pending queue, the readiness flip and the
// closing latch. Writes to the upstream leg also happen under mu, so the
// drain-on-open cannot interleave with frames relayed afterwards.
type session struct {
	id     string
	target string
	client *websocket.Conn
	store  state.Store

	mu       sync.Mutex
	upstream *websocket.Conn // nil until the outbound handshake completes
	pending  []frame
	ready    bool
	closing  bool

	// clientWriteMu serializes writes to the client leg (relay vs close).
	clientWriteMu sync.Mutex

	startedAt time.Time
}

// run drives the session to completion: the upstream handshake proceeds in
// its own goroutine while the calling goroutine reads the client leg. It
// returns once the client leg is finished, by which point the coordinator has
// already shut the upstream leg or is about to.
func (t *session) run(dialer *websocket.Dialer, header http.Header) {
	go t.connectUpstream(dialer, header)
	t.clientLoop()
}

func (t *session) clientLoop() {
	for {
		mt, data, err := t.client.ReadMessage()
		if err != nil {
			code, reason := closeDetails(err, "Client connection error")
			t.closeTrigger(clientLeg, code, reason, err)
			return
		}
		t.mu.Lock()
		if t.closing {
			t.mu.Unlock()
			obs.Debug("frame.drop", obs.Fields{"session": t.id, "direction": "client_to_upstream", "size": len(data)})
			continue
		}
		if !t.ready {
			t.pending = append(t.pending, frame{messageType: mt, data: data})
			queued := len(t.pending)
			t.mu.Unlock()
			obs.FramesBufferedTotal.Inc()
			obs.Debug("frame.buffer", obs.Fields{"session": t.id, "size": len(data), "queued": queued})
			continue
		}
		err = t.upstream.WriteMessage(mt, data)
		t.mu.Unlock()
		if err != nil {
			t.closeTrigger(upstreamLeg, websocket.CloseInternalServerErr, "Upstream connection error", err)
			return
		}
		obs.FramesForwardedTotal.WithLabelValues("client_to_upstream").Inc()
		obs.BytesForwardedTotal.WithLabelValues("client_to_upstream").Add(float64(len(data)))
		obs.Debug("frame.forward", obs.Fields{"session": t.id, "direction": "client_to_upstream", "size": len(data)})
	}
}

func (t *session) upstreamLoop(conn *websocket.Conn) {
	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			code, reason := closeDetails(err, "Upstream connection error")
			t.closeTrigger(upstreamLeg, code, reason, err)
			return
		}
		t.mu.Lock()
		closing := t.closing
		t.mu.Unlock()
		if closing {
			// client leg is gone or going; the frame is lost
			obs.Debug("frame.drop", obs.Fields{"session": t.id, "direction": "upstream_to_client", "size": len(data)})
			continue
		}
		t.clientWriteMu.Lock()
		err = t.client.WriteMessage(mt, data)
		t.clientWriteMu.Unlock()
		if err != nil {
			t.closeTrigger(clientLeg, websocket.CloseInternalServerErr, "Client connection error", err)
			return
		}
		obs.FramesForwardedTotal.WithLabelValues("upstream_to_client").Inc()
		obs.BytesForwardedTotal.WithLabelValues("upstream_to_client").Add(float64(len(data)))
		obs.Debug("frame.forward", obs.Fields{"session": t.id, "direction": "upstream_to_client", "size": len(data)})
	}
}

// closeTrigger performs the one-shot teardown. The first close or error on
// either leg wins the latch; later triggers only log. The opposite leg
// receives a close frame carrying the mapped code and reason, then both
// sockets are released. Failures while closing an already-dead leg are
// warnings, never propagated.
func (t *session) closeTrigger(source leg, code int, reason string, cause error) {
	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		obs.Debug("session.close.duplicate", obs.Fields{"session": t.id, "trigger": source.String(), "code": code})
		return
	}
	t.closing = true
	t.pending = nil
	upstream := t.upstream
	t.mu.Unlock()

	var other *websocket.Conn
	if source == clientLeg {
		other = upstream
	} else {
		other = t.client
	}
	if other != nil {
		msg := websocket.FormatCloseMessage(code, reason)
		deadline := time.Now().Add(closeWriteTimeout)
		if err := other.WriteControl(websocket.CloseMessage, msg, deadline); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			obs.Warn("session.close.propagate", obs.Fields{"session": t.id, "leg": otherLeg(source).String(), "err": err.Error()})
		}
		if err := other.Close(); err != nil {
			obs.Warn("session.close.release", obs.Fields{"session": t.id, "leg": otherLeg(source).String(), "err": err.Error()})
		}
	}
	if source == clientLeg {
		_ = t.client.Close()
	} else if upstream != nil {
		_ = upstream.Close()
	}

	duration := time.Since(t.startedAt)
	f := obs.Fields{
		"session":     t.id,
		"trigger":     source.String(),
		"code":        code,
		"reason":      reason,
		"duration_ms": duration.Milliseconds(),
	}
	if cause != nil {
		f["cause"] = cause.Error()
	}
	obs.Info("session.closed", f)
	obs.SessionDurationSeconds.Observe(duration.Seconds())
}

func otherLeg(l leg) leg {
	if l == clientLeg {
		return upstreamLeg
	}
	return clientLeg
}
