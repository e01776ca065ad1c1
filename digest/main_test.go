package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/pipeline"
	"github.com/DeafMist/fed-landscape-radar/internal/report"
)

type stubRanker struct {
	calls int
	got   pipeline.Request
	res   pipeline.Result
}

func (s *stubRanker) Run(_ context.Context, req pipeline.Request) pipeline.Result {
	s.calls++
	s.got = req
	return s.res
}

type stubPublisher struct {
	reports []models.Report
	err     error
}

func (s *stubPublisher) Publish(_ context.Context, rep models.Report) error {
	if s.err != nil {
		return s.err
	}
	s.reports = append(s.reports, rep)
	return nil
}

func TestRunOncePublishesDigest(t *testing.T) {
	r := &stubRanker{res: pipeline.Result{
		RunID:  "run-1",
		Status: pipeline.StatusDegraded,
		Ranked: []models.Document{{URL: "https://ed.gov/a", Title: "AI in classrooms", Score: 0.61}},
	}}
	pub := &stubPublisher{}
	d := &digest{
		log:       logger.Discard(),
		ranker:    r,
		builder:   report.NewBuilder("Weekly Radar"),
		publisher: pub,
		request:   pipeline.Request{Keywords: []string{"ai"}, Recency: models.RecencyWeek},
		recipient: "office@uni.edu",
		timeout:   time.Minute,
	}

	d.runOnce(context.Background())

	require.Equal(t, 1, r.calls)
	require.Equal(t, []string{"ai"}, r.got.Keywords)
	require.Len(t, pub.reports, 1)
	require.Equal(t, "office@uni.edu", pub.reports[0].Recipient)
	require.Equal(t, "degraded", pub.reports[0].Status)
	require.Contains(t, pub.reports[0].Body, "# Weekly Radar")
}

func TestRunOnceSurvivesPublishFailure(t *testing.T) {
	r := &stubRanker{res: pipeline.Result{RunID: "r", Status: pipeline.StatusNoResults}}
	d := &digest{
		log:       logger.Discard(),
		ranker:    r,
		builder:   report.NewBuilder(""),
		publisher: &stubPublisher{err: errors.New("broker down")},
		timeout:   time.Minute,
	}

	require.NotPanics(t, func() { d.runOnce(context.Background()) })
	require.Equal(t, 1, r.calls)
}
