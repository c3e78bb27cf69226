package httpx

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// WriteRawResponse writes a minimal HTTP/1.1 status line, plain-text body and
// Connection: close. It is used on hijacked connections that will never complete
// a WebSocket handshake, so no further protocol negotiation happens afterwards.
func WriteRawResponse(w io.Writer, status int, body string) error {
	text := http.StatusText(status)
	if text == "" {
		text = "Error"
	}
	_, err := fmt.Fprintf(w, "HTTP/1.1 %d %s\r\nContent-Type: text/plain; charset=utf-8\r\nContent-Length: %d\r\nConnection: close\r\n\r\n%s",
		status, text, len(body), body)
	return err
}

// MaskSecret returns a loggable form of a credential: the first four characters
// followed by asterisks. Short or empty values collapse to a fixed mask so the
// length leaks nothing.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + strings.Repeat("*", 4)
}
