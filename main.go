package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"coin-arena/config"
	"coin-arena/health"
	"coin-arena/logging"
	"coin-arena/results"
	game "coin-arena/src"
	api "coin-arena/src/api"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.Log)
	log := logging.Component(logger, "main")
	if cfg.JWTSecret == config.DefaultJWTSecret {
		log.Warn("using default JWT secret; set ARENA_JWT_SECRET in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Result sinks
	memory := results.NewMemory(100)
	recorders := results.Multi{memory}
	if cfg.MongoURI != "" {
		m, err := results.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			log.WithError(err).Error("mongo results sink disabled")
		} else {
			recorders = append(recorders, m)
			log.WithField("db", cfg.MongoDatabase).Info("mongo results sink enabled")
		}
	}
	if cfg.RedisAddr != "" {
		r, err := results.NewRedis(ctx, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			log.WithError(err).Error("redis results sink disabled")
		} else {
			recorders = append(recorders, r)
			log.WithField("channel", cfg.RedisChannel).Info("redis results sink enabled")
		}
	}

	// Core game server
	opts := game.DefaultOptions()
	opts.Latency = cfg.Latency
	opts.TickInterval = cfg.TickInterval
	opts.SpawnInterval = cfg.SpawnInterval
	opts.FlushInterval = cfg.FlushInterval
	opts.Recorder = recorders
	opts.Logger = logging.Component(logger, "game")
	s := game.NewGameServer(opts)

	engineCtx, cancelEngine := context.WithCancel(context.Background())
	engineDone := make(chan struct{})
	go func() {
		s.Run(engineCtx)
		close(engineDone)
	}()

	// Optional gRPC health
	var hs *health.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.WithError(err).Fatal("grpc listen")
		}
		hs = health.New(logging.Component(logger, "health"))
		hs.SetServing(true)
		go func() {
			if err := hs.Serve(lis); err != nil {
				log.WithError(err).Error("grpc health server")
			}
		}()
	}

	metrics := api.NewMetricsHandler(s)
	r := chi.NewRouter()

	// Mount REST API under /api
	r.Mount("/api", api.NewAPIRouter(api.Deps{
		Config:  cfg,
		Engine:  s,
		Results: memory,
		Metrics: metrics,
		Log:     logging.Component(logger, "api"),
	}))
	r.HandleFunc("/ws", s.HandleConnections)
	if cfg.StaticDir != "" {
		static, err := game.StaticFileServer(cfg.StaticDir, "/index.html")
		if err != nil {
			log.WithError(err).Fatal("static client")
		}
		r.Handle("/*", static)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	serveErr := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr, "latency": cfg.Latency}).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-serveErr:
		log.WithError(err).Error("http server failed")
	}

	metrics.SetWebSocketStatus(api.WebSocketStopping)
	if hs != nil {
		hs.SetServing(false)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("http shutdown")
	}
	cancelEngine()
	<-engineDone
	if hs != nil {
		hs.Stop()
	}
	if err := recorders.Close(shutdownCtx); err != nil {
		log.WithError(err).Warn("close result sinks")
	}
	log.Info("server stopped")
}
