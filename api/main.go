package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/DeafMist/fed-landscape-radar/internal/config"
	"github.com/DeafMist/fed-landscape-radar/internal/elasticsearch"
	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/pipeline"
	"github.com/DeafMist/fed-landscape-radar/internal/queue"
)

func main() {
	log := logger.New("api")
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	p, err := pipeline.FromConfig(cfg.Pipeline, log)
	if err != nil {
		log.Error("init pipeline", slog.Any("err", err))
		os.Exit(1)
	}

	srv := &server{log: log, cfg: cfg, ranker: p}

	if cfg.RequestQueue {
		producer := queue.NewProducer(queue.NewWriter(cfg.KafkaBrokers, cfg.RequestTopic), cfg.RequestTopic)
		defer producer.Close()
		srv.requests = producer
	}

	if cfg.Pipeline.SearchBackend == config.BackendIndex {
		esClient, err := elasticsearch.New(cfg.Pipeline.ElasticsearchAddr, cfg.Pipeline.ElasticsearchIndex, log)
		if err != nil {
			log.Error("init elasticsearch", slog.Any("err", err))
			os.Exit(1)
		}
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := esClient.Ping(pingCtx); err != nil {
			log.Warn("elasticsearch not reachable yet", slog.Any("err", err))
		}
		cancel()
		srv.health = esClient.Health
	}

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RankTimeout + 15*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.Bool("request_queue", cfg.RequestQueue),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/process", s.handleProcess)
		r.Post("/rank", s.handleRank)
	})
	return r
}
