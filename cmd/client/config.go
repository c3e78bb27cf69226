package main

import "flag"

// Config holds client runtime configuration.
type Config struct {
	ProxyURL string
	Token    string
	Server   string
	Origin   string
	Protocol string
	Binary   bool
}

var cfg Config

// init registers all client flags into the default flag set.
func init() {
	flag.StringVar(&cfg.ProxyURL, "proxy", "ws://127.0.0.1:8080/", "proxy address")
	flag.StringVar(&cfg.Token, "token", "", "auth token forwarded to the upstream broker")
	flag.StringVar(&cfg.Server, "server", "", "upstream websocket url (ws:// or wss://)")
	flag.StringVar(&cfg.Origin, "origin", "", "Origin header to present; empty sends none")
	flag.StringVar(&cfg.Protocol, "protocol", "", "subprotocol to request")
	flag.BoolVar(&cfg.Binary, "binary", false, "send stdin lines as binary frames")
}
