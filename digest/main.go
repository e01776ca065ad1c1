package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/DeafMist/fed-landscape-radar/internal/config"
	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/pipeline"
	"github.com/DeafMist/fed-landscape-radar/internal/queue"
	"github.com/DeafMist/fed-landscape-radar/internal/report"
)

type ranker interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Result
}

type digest struct {
	log       *slog.Logger
	ranker    ranker
	builder   *report.Builder
	publisher report.Publisher
	request   pipeline.Request
	recipient string
	timeout   time.Duration
}

func main() {
	log := logger.New("digest")
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	cfg, err := config.LoadDigest()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	recency, err := models.ParseRecency(cfg.DateFilter)
	if err != nil {
		log.Error("parse DIGEST_DATE_FILTER", slog.Any("err", err))
		os.Exit(1)
	}

	p, err := pipeline.FromConfig(cfg.Pipeline, log)
	if err != nil {
		log.Error("init pipeline", slog.Any("err", err))
		os.Exit(1)
	}

	producer := queue.NewProducer(queue.NewWriter(cfg.KafkaBrokers, cfg.ReportTopic), cfg.ReportTopic)
	defer producer.Close()

	d := &digest{
		log:       log,
		ranker:    p,
		builder:   report.NewBuilder(cfg.ReportTitle),
		publisher: report.NewKafkaPublisher(producer, log),
		request:   pipeline.Request{Keywords: cfg.Keywords, Recency: recency},
		recipient: cfg.Recipient,
		timeout:   cfg.RunTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("digest job running",
		slog.Duration("interval", cfg.Interval),
		slog.Any("keywords", cfg.Keywords),
		slog.String("recency", recency.String()),
	)

	// run immediately on start, a failed run waits for the next tick
	d.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			d.runOnce(ctx)
		}
	}
}

func (d *digest) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	res := d.ranker.Run(runCtx, d.request)
	rep := d.builder.Build(res, d.recipient)

	if err := d.publisher.Publish(ctx, rep); err != nil {
		d.log.Warn("digest publish failed (will retry on next interval)",
			slog.String("run_id", res.RunID),
			slog.Any("err", err),
		)
		return
	}

	if len(res.Ranked) > 0 {
		d.log.Info("digest run completed",
			slog.String("run_id", res.RunID),
			slog.String("status", string(res.Status)),
			slog.Int("documents", len(res.Ranked)),
		)
	} else {
		d.log.Debug("digest run completed, no articles found", slog.String("run_id", res.RunID))
	}
}
