package proxy

// DefaultAuthHeader is the credential header injected on the upstream
// handshake when no override is configured.
const DefaultAuthHeader = "X-Auth-Token"

// Config carries the proxy's runtime settings. It is populated once at
// startup and passed into New; nothing in this package reads globals.
type Config struct {
	// AllowedOrigins is the origin allow-list. Empty disables the check and
	// the entry "*" admits any origin. Requests without an Origin header
	// always pass (non-browser clients do not send one).
	AllowedOrigins []string

	// AuthHeader overrides the header name injected on the upstream
	// handshake. Empty selects DefaultAuthHeader.
	AuthHeader string

	// InsecureUpstreamTLS disables certificate verification on the upstream
	// leg. Development only.
	InsecureUpstreamTLS bool

	// HandshakeRate and HandshakeBurst bound upgrade attempts per remote
	// address per second. A zero rate disables limiting.
	HandshakeRate  int
	HandshakeBurst int
}
