package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"sensewire/internal/bridge"
	"sensewire/internal/logging"
	"sensewire/internal/server"
	"sensewire/internal/shared"
	"sensewire/internal/stream"
)

func main() {
	cfgPath := flag.String("config", "sensewire.yaml", "config file path")
	listen := flag.String("listen", "", "listen address (overrides config)")
	secret := flag.String("secret", "", "client secret (or SW_CLIENT_SECRET env)")
	flag.Parse()

	cfg, err := shared.LoadServerConfig(*cfgPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Init(logging.ParseLevel("info"), false)
			logging.Component("main").Error("load config", "path", *cfgPath, "error", err)
			os.Exit(1)
		}
		cfg = shared.DefaultServerConfig()
	}
	cfg.ApplyEnv()
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *secret != "" {
		cfg.ClientSecret = *secret
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel), cfg.LogJSON)
	log := logging.Component("main")

	offset, err := shared.ParseUTCOffset(cfg.DisplayOffset)
	if err != nil {
		log.Error("bad display_offset", "value", cfg.DisplayOffset, "error", err)
		os.Exit(1)
	}

	var store server.Store
	switch cfg.Storage.Backend {
	case "memory":
		store = server.NewMemoryStore()
	case "sqlite":
		db, err := server.OpenDB(cfg.Storage.DSN)
		if err != nil {
			log.Error("open sqlite store", "dsn", cfg.Storage.DSN, "error", err)
			os.Exit(1)
		}
		defer db.Close()
		store = server.NewSQLiteStore(db)
	default:
		log.Error("unknown storage backend", "backend", cfg.Storage.Backend)
		os.Exit(1)
	}

	api := server.NewAPI(store, cfg.ClientSecret, offset)
	mux := api.Routes()

	var hub *stream.Hub
	if cfg.Stream.Enabled {
		hub = stream.NewHub()
		go hub.Run()
		api.Stream = hub
		mux.HandleFunc("/ws", hub.ServeWS)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if cfg.MQTT.Enabled {
		b, err := bridge.New(bridge.Options{
			BrokerURL: cfg.MQTT.BrokerURL,
			ClientID:  cfg.MQTT.ClientID,
			Topic:     cfg.MQTT.Topic,
		}, store, hubOrNil(hub))
		if err != nil {
			log.Error("mqtt bridge", "error", err)
			os.Exit(1)
		}
		g.Go(func() error { return b.Run(ctx) })
	}

	srv := &http.Server{Addr: cfg.Listen, Handler: mux}
	g.Go(func() error {
		log.Info("listening", "addr", cfg.Listen, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shut down cleanly")
}

// hubOrNil avoids handing the bridge a typed-nil Broadcaster.
func hubOrNil(h *stream.Hub) server.Broadcaster {
	if h == nil {
		return nil
	}
	return h
}
