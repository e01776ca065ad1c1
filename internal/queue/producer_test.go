package queue_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/DeafMist/fed-landscape-radar/internal/queue"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishJSON(t *testing.T) {
	w := &recordingWriter{}
	p := queue.NewProducer(w, "reports_ready")

	require.NoError(t, p.PublishJSON(context.Background(), "run-1", map[string]string{"status": "ok"}))
	require.Len(t, w.msgs, 1)
	require.Equal(t, "run-1", string(w.msgs[0].Key))

	var got map[string]string
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	require.Equal(t, "ok", got["status"])

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}

func TestPublishJSONErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := queue.NewProducer(w, "reports_ready")

	require.Error(t, p.PublishJSON(context.Background(), "", 1))

	err := p.PublishJSON(context.Background(), "k", 1)
	require.ErrorContains(t, err, "reports_ready")
	require.ErrorContains(t, err, "broker down")

	require.Error(t, p.PublishJSON(context.Background(), "k", func() {}))
}

func TestNewWriterTargetsTopic(t *testing.T) {
	w := queue.NewWriter([]string{"kafka:9092"}, "report_requests")
	require.Equal(t, "report_requests", w.Topic)
	require.NoError(t, w.Close())
}
