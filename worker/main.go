package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"

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

type handler struct {
	log       *slog.Logger
	ranker    ranker
	builder   *report.Builder
	publisher report.Publisher
	timeout   time.Duration
}

func main() {
	log := logger.New("worker")
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found")
	}

	cfg, err := config.LoadWorker()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	p, err := pipeline.FromConfig(cfg.Pipeline, log)
	if err != nil {
		log.Error("init pipeline", slog.Any("err", err))
		os.Exit(1)
	}

	producer := queue.NewProducer(queue.NewWriter(cfg.KafkaBrokers, cfg.ReportTopic), cfg.ReportTopic)
	defer producer.Close()

	h := &handler{
		log:       log,
		ranker:    p,
		builder:   report.NewBuilder(cfg.ReportTitle),
		publisher: report.NewKafkaPublisher(producer, log),
		timeout:   cfg.RunTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.KafkaBrokers,
		Topic:          cfg.RequestTopic,
		GroupID:        cfg.KafkaConsumer,
		QueueCapacity:  cfg.BatchSize,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit only
	})
	defer reader.Close()

	dlqTopic := cfg.RequestTopic + "_dlq"
	dlqWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       dlqTopic,
		MaxAttempts: 3,
	})
	defer dlqWriter.Close()

	log.Info("worker started",
		slog.String("topic", cfg.RequestTopic),
		slog.String("group", cfg.KafkaConsumer),
		slog.String("report_topic", producer.Topic()),
		slog.String("dlq_topic", dlqTopic),
	)

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Info("context canceled, stopping")
				return
			}
			log.Error("fetch message", slog.Any("err", err))
			continue
		}

		if err := h.processMessage(ctx, msg); err != nil {
			log.Warn("process message failed, sending to DLQ",
				slog.Any("err", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)

			if !sendToDLQ(ctx, log, dlqWriter, msg, err) {
				if ctx.Err() != nil {
					log.Info("context canceled during DLQ retry")
					return
				}
				log.Error("DLQ write exhausted retries, message may be lost if later messages commit",
					slog.Int("partition", msg.Partition),
					slog.Int64("offset", msg.Offset),
				)
				continue
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit message", slog.Any("err", err))
		}
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// sendToDLQ copies msg to the dead-letter topic with error context, retrying
// with exponential backoff. It reports whether the write succeeded.
func sendToDLQ(ctx context.Context, log *slog.Logger, w messageWriter, msg kafka.Message, cause error) bool {
	dlqMsg := kafka.Message{
		Key:   msg.Key,
		Value: msg.Value,
		Headers: append(msg.Headers,
			kafka.Header{Key: "original_partition", Value: []byte(fmt.Sprintf("%d", msg.Partition))},
			kafka.Header{Key: "original_offset", Value: []byte(fmt.Sprintf("%d", msg.Offset))},
			kafka.Header{Key: "error", Value: []byte(cause.Error())},
			kafka.Header{Key: "timestamp", Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		),
	}

	for attempt := range 5 {
		dlqErr := w.WriteMessages(ctx, dlqMsg)
		if dlqErr == nil {
			log.Info("message sent to DLQ",
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
				slog.Int("attempt", attempt+1),
			)
			return true
		}

		backoff := time.Duration(1<<uint(attempt)) * time.Second
		log.Warn("DLQ write failed, retrying",
			slog.Any("err", dlqErr),
			slog.Int("attempt", attempt+1),
			slog.Duration("backoff", backoff),
		)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return false
		}
	}
	return false
}

// processMessage runs one report request end to end. Pipeline problems end up
// in the report status; only bad payloads and delivery failures return errors.
func (h *handler) processMessage(ctx context.Context, msg kafka.Message) error {
	var req models.ReportRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("decode report request: %w", err)
	}

	keywords := make([]string, 0, len(req.Keywords))
	for _, kw := range req.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	recency, err := models.ParseRecency(req.DateFilter)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	res := h.ranker.Run(runCtx, pipeline.Request{Keywords: keywords, Recency: recency})
	if req.RunID != "" {
		res.RunID = req.RunID
	}
	if res.RunID == "" {
		res.RunID = uuid.NewString()
	}

	rep := h.builder.Build(res, strings.TrimSpace(req.RecipientEmail))
	if err := h.publisher.Publish(ctx, rep); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}

	h.log.Info("report request processed",
		slog.String("run_id", res.RunID),
		slog.String("status", string(res.Status)),
		slog.Int("documents", len(res.Ranked)),
	)
	return nil
}
