package proxy

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upgradeReq(target, origin string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, target, nil)
	r.Header.Set("Connection", "Upgrade")
	r.Header.Set("Upgrade", "websocket")
	if origin != "" {
		r.Header.Set("Origin", origin)
	}
	return r
}

func TestValidateParams(t *testing.T) {
	cases := []struct {
		name   string
		target string
		status int
		reason string
	}{
		{"missing token", "/?server=ws://x", 400, "Missing token parameter"},
		{"empty token", "/?token=&server=ws://x", 400, "Missing token parameter"},
		{"missing server", "/?token=abc", 400, "Missing server parameter"},
		{"empty server", "/?token=abc&server=", 400, "Missing server parameter"},
		{"http scheme", "/?token=abc&server=http://x", 400, "Invalid server parameter"},
		{"ftp scheme", "/?token=abc&server=ftp://x", 400, "Invalid server parameter"},
		{"uppercase scheme", "/?token=abc&server=WS://x", 400, "Invalid server parameter"},
		{"bare host", "/?token=abc&server=example.com", 400, "Invalid server parameter"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, rej := validate(upgradeReq(tc.target, ""), nil)
			require.NotNil(t, rej)
			assert.Equal(t, tc.status, rej.Status)
			assert.Equal(t, tc.reason, rej.Reason)
		})
	}
}

func TestValidateAccept(t *testing.T) {
	r := upgradeReq("/?token=abc&server=wss://broker.example.com/feed", "")
	r.Header.Set("Sec-WebSocket-Protocol", "mqtt")
	acc, rej := validate(r, nil)
	require.Nil(t, rej)
	assert.Equal(t, "abc", acc.Token)
	assert.Equal(t, "wss://broker.example.com/feed", acc.UpstreamURL)
	assert.Equal(t, []string{"mqtt"}, acc.Subprotocols)

	// plain ws scheme is accepted too
	_, rej = validate(upgradeReq("/?token=abc&server=ws://broker.local:9001", ""), nil)
	assert.Nil(t, rej)
}

func TestValidateOrigin(t *testing.T) {
	allowed := []string{"https://a.com"}

	_, rej := validate(upgradeReq("/?token=a&server=ws://x", "https://b.com"), allowed)
	require.NotNil(t, rej)
	assert.Equal(t, http.StatusForbidden, rej.Status)
	assert.Equal(t, "Origin not allowed", rej.Reason)

	_, rej = validate(upgradeReq("/?token=a&server=ws://x", "https://a.com"), allowed)
	assert.Nil(t, rej)

	_, rej = validate(upgradeReq("/?token=a&server=ws://x", "https://whatever.io"), []string{"*"})
	assert.Nil(t, rej)

	// no Origin header passes even with a configured allow-list
	_, rej = validate(upgradeReq("/?token=a&server=ws://x", ""), allowed)
	assert.Nil(t, rej)

	// no allow-list passes any origin
	_, rej = validate(upgradeReq("/?token=a&server=ws://x", "https://b.com"), nil)
	assert.Nil(t, rej)

	// parameter errors win over origin errors
	_, rej = validate(upgradeReq("/?server=ws://x", "https://b.com"), allowed)
	require.NotNil(t, rej)
	assert.Equal(t, http.StatusBadRequest, rej.Status)
}
