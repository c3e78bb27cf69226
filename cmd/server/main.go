package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/matst80/wsrelay/internal/obs"
	"github.com/matst80/wsrelay/internal/proxy"
	"github.com/matst80/wsrelay/internal/state"
)

func main() {
	flag.Parse()
	obs.EnableDebug(cfg.Debug)
	obs.Info("server.start", obs.Fields{
		"listen":                cfg.ListenAddr,
		"ops":                   cfg.OpsAddr,
		"origins":               cfg.AllowedOrigins,
		"insecure_upstream_tls": cfg.InsecureUpstreamTLS,
	})

	store, err := state.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		obs.Error("state.init", obs.Fields{"err": err.Error()})
		os.Exit(1)
	}
	defer store.Close()

	prx := proxy.New(proxy.Config{
		AllowedOrigins:      splitOrigins(cfg.AllowedOrigins),
		AuthHeader:          cfg.AuthHeader,
		InsecureUpstreamTLS: cfg.InsecureUpstreamTLS,
		HandshakeRate:       cfg.HandshakeRate,
		HandshakeBurst:      cfg.HandshakeBurst,
	}, store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: prx}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			obs.Error("listen.proxy", obs.Fields{"err": err.Error(), "addr": cfg.ListenAddr})
			os.Exit(1)
		}
	}()
	go startOpsServer(cfg.OpsAddr, store)

	store.SetReady(true)
	obs.Info("server.ready", obs.Fields{})

	<-ctx.Done()
	obs.Info("server.shutdown.signal", obs.Fields{})
	store.SetClosing(true)

	// Stop accepting new sessions, then let in-flight tunnels drain. Upgraded
	// connections are hijacked, so Shutdown alone does not wait for them.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracePeriod)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	if err := prx.Drain(shutdownCtx); err != nil {
		obs.Warn("server.shutdown.drain", obs.Fields{"err": err.Error()})
	}
	obs.Info("server.shutdown.complete", obs.Fields{})
}
