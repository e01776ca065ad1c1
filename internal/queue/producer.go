package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the part of *kafka.Writer the producer relies on.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes JSON payloads to a single topic.
type Producer struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
}

// NewWriter builds a synchronous kafka writer for topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		MaxAttempts:            3,
		WriteTimeout:           10 * time.Second,
		ReadTimeout:            10 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// NewProducer wraps w. topic is only used for error messages; the writer
// already targets it.
func NewProducer(w MessageWriter, topic string) *Producer {
	return &Producer{writer: w, topic: topic, timeout: 10 * time.Second}
}

// Topic returns the topic this producer publishes to.
func (p *Producer) Topic() string {
	return p.topic
}

// PublishJSON marshals v and writes it with key.
func (p *Producer) PublishJSON(ctx context.Context, key string, v any) error {
	if key == "" {
		return errors.New("message key cannot be empty")
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish to topic %s: %w", p.topic, err)
	}
	return nil
}

// Close closes the underlying writer.
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
