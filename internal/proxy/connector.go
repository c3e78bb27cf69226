package proxy

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/matst80/wsrelay/internal/obs"
)

// connectUpstream performs the outbound handshake, the session's only
// suspension point. On success it publishes the upstream leg, drains the
// pending queue in arrival order under the session mutex, and then reads the
// upstream leg until it dies. On failure the client leg is closed with 1011;
// there is no retry.
func (t *session) connectUpstream(dialer *websocket.Dialer, header http.Header) {
	conn, resp, err := dialer.Dial(t.target, header)
	if err != nil {
		f := obs.Fields{"session": t.id, "url": t.target, "err": err.Error()}
		if resp != nil {
			f["status"] = resp.StatusCode
		}
		obs.Error("upstream.dial", f)
		obs.UpstreamFailuresTotal.Inc()
		if t.store != nil {
			t.store.IncUpstreamFailure()
		}
		t.closeTrigger(upstreamLeg, websocket.CloseInternalServerErr, "Upstream connection error", err)
		return
	}

	t.mu.Lock()
	if t.closing {
		t.mu.Unlock()
		_ = conn.Close()
		return
	}
	t.upstream = conn
	queued := len(t.pending)
	for _, fr := range t.pending {
		if err := conn.WriteMessage(fr.messageType, fr.data); err != nil {
			t.pending = nil
			t.mu.Unlock()
			t.closeTrigger(upstreamLeg, websocket.CloseInternalServerErr, "Upstream connection error", err)
			return
		}
		obs.FramesForwardedTotal.WithLabelValues("client_to_upstream").Inc()
		obs.BytesForwardedTotal.WithLabelValues("client_to_upstream").Add(float64(len(fr.data)))
	}
	t.pending = nil
	t.ready = true
	t.mu.Unlock()

	obs.Info("session.open", obs.Fields{"session": t.id, "url": t.target, "drained": queued, "subprotocol": conn.Subprotocol()})
	t.upstreamLoop(conn)
}

// closeDetails maps a read error to the close code and reason propagated to
// the opposite leg. An explicit close frame travels verbatim; everything else
// collapses to 1011 with the per-leg fallback reason. 1005/1006 are synthetic
// codes that must not reappear on the wire.
func closeDetails(err error, fallback string) (int, string) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		switch ce.Code {
		case websocket.CloseNoStatusReceived:
			return websocket.CloseNormalClosure, ""
		case websocket.CloseAbnormalClosure:
			return websocket.CloseInternalServerErr, fallback
		}
		return ce.Code, ce.Text
	}
	return websocket.CloseInternalServerErr, fallback
}
