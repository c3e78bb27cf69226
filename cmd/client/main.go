// Command client is a development tool for poking at a running wsrelay: it
// connects through the proxy to the given upstream, sends stdin lines as
// frames and prints whatever comes back.
package main

import (
	"bufio"
	"flag"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	flag.Parse()
	if cfg.Token == "" || cfg.Server == "" {
		log.Fatal("both -token and -server are required")
	}
	u, err := url.Parse(cfg.ProxyURL)
	if err != nil {
		log.Fatalf("invalid proxy url: %v", err)
	}
	q := u.Query()
	q.Set("token", cfg.Token)
	q.Set("server", cfg.Server)
	u.RawQuery = q.Encode()

	header := http.Header{}
	if cfg.Origin != "" {
		header.Set("Origin", cfg.Origin)
	}
	dialer := *websocket.DefaultDialer
	if cfg.Protocol != "" {
		dialer.Subprotocols = []string{cfg.Protocol}
	}
	conn, resp, err := dialer.Dial(u.String(), header)
	if err != nil {
		if resp != nil {
			log.Fatalf("connect failed: %v (status %d)", err, resp.StatusCode)
		}
		log.Fatalf("connect failed: %v", err)
	}
	defer conn.Close()
	log.Printf("connected via %s to %s", u.Host, cfg.Server)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				return
			}
			if mt == websocket.BinaryMessage {
				log.Printf("recv %d bytes (binary)", len(data))
				continue
			}
			log.Printf("recv: %s", data)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	msgType := websocket.TextMessage
	if cfg.Binary {
		msgType = websocket.BinaryMessage
	}
	for {
		select {
		case <-done:
			return
		case <-sig:
			sendClose(conn, "done")
			waitClosed(done)
			return
		case line, ok := <-lines:
			if !ok {
				sendClose(conn, "")
				waitClosed(done)
				return
			}
			if err := conn.WriteMessage(msgType, []byte(line)); err != nil {
				log.Printf("write: %v", err)
				return
			}
		}
	}
}

func sendClose(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		log.Printf("close: %v", err)
	}
}

func waitClosed(done chan struct{}) {
	select {
	case <-done:
	case <-time.After(time.Second):
	}
}
