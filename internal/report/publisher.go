package report

import (
	"context"
	"errors"
	"log/slog"

	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
)

// Publisher hands a finished report to the delivery side.
type Publisher interface {
	Publish(ctx context.Context, rep models.Report) error
}

// JSONProducer is satisfied by *queue.Producer.
type JSONProducer interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// KafkaPublisher writes reports to the report topic keyed by run ID.
type KafkaPublisher struct {
	producer JSONProducer
	log      *slog.Logger
}

func NewKafkaPublisher(p JSONProducer, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{producer: p, log: logger.OrDiscard(log)}
}

func (k *KafkaPublisher) Publish(ctx context.Context, rep models.Report) error {
	if rep.RunID == "" {
		return errors.New("report has no run id")
	}
	if err := k.producer.PublishJSON(ctx, rep.RunID, rep); err != nil {
		return err
	}
	k.log.Info("report published",
		slog.String("run_id", rep.RunID),
		slog.String("status", rep.Status),
		slog.Int("documents", len(rep.Documents)),
	)
	return nil
}
