package proxy

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// Accepted holds the routing parameters extracted from a valid upgrade request.
type Accepted struct {
	Token        string
	UpstreamURL  string
	Subprotocols []string
}

// Rejection describes why an upgrade request was refused before any session
// existed. Reason is the plain-text body sent to the client; label feeds the
// reject counter.
type Rejection struct {
	Status int
	Reason string
	label  string
}

// validate applies the acceptance rules in order; the first failure wins.
// The origin check only applies when an allow-list is configured and the
// request actually carries an Origin header.
func validate(r *http.Request, allowedOrigins []string) (Accepted, *Rejection) {
	q := r.URL.Query()
	token := q.Get("token")
	if token == "" {
		return Accepted{}, &Rejection{http.StatusBadRequest, "Missing token parameter", "missing_token"}
	}
	target := q.Get("server")
	if target == "" {
		return Accepted{}, &Rejection{http.StatusBadRequest, "Missing server parameter", "missing_server"}
	}
	if !strings.HasPrefix(target, "ws://") && !strings.HasPrefix(target, "wss://") {
		return Accepted{}, &Rejection{http.StatusBadRequest, "Invalid server parameter", "invalid_server"}
	}
	if origin := r.Header.Get("Origin"); origin != "" && len(allowedOrigins) > 0 && !originAllowed(origin, allowedOrigins) {
		return Accepted{}, &Rejection{http.StatusForbidden, "Origin not allowed", "origin"}
	}
	return Accepted{Token: token, UpstreamURL: target, Subprotocols: websocket.Subprotocols(r)}, nil
}

func originAllowed(origin string, allowed []string) bool {
	for _, entry := range allowed {
		if entry == "*" || entry == origin {
			return true
		}
	}
	return false
}
