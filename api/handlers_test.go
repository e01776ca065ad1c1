package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/fed-landscape-radar/internal/config"
	"github.com/DeafMist/fed-landscape-radar/internal/logger"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/pipeline"
	"github.com/DeafMist/fed-landscape-radar/internal/query"
)

type stubRanker struct {
	got pipeline.Request
	res pipeline.Result
}

func (s *stubRanker) Run(ctx context.Context, req pipeline.Request) pipeline.Result {
	s.got = req
	return s.res
}

type stubQueue struct {
	key string
	val any
	err error
}

func (s *stubQueue) PublishJSON(_ context.Context, key string, v any) error {
	s.key, s.val = key, v
	return s.err
}

func newTestServer(r *stubRanker, q *stubQueue) *server {
	srv := &server{
		log:    logger.Discard(),
		cfg:    &config.API{RankTimeout: time.Second, MaxKeywords: 3},
		ranker: r,
	}
	if q != nil {
		srv.requests = q
	}
	return srv
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubRanker{}, nil)
	rec := do(t, srv.routes(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	srv.health = func(context.Context) error { return errors.New("cluster red") }
	rec = do(t, srv.routes(), http.MethodGet, "/health", "")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Contains(t, rec.Body.String(), "cluster red")
}

func TestProcessQueuesRequest(t *testing.T) {
	q := &stubQueue{}
	srv := newTestServer(&stubRanker{}, q)

	rec := do(t, srv.routes(), http.MethodPost, "/api/process",
		`{"recipient_email":"lab@uni.edu","selected_keywords":[" quantum ",""],"date_filter":"month"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp processResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.NotEmpty(t, resp.RunID)
	require.Equal(t, resp.RunID, q.key)

	queued, ok := q.val.(models.ReportRequest)
	require.True(t, ok)
	require.Equal(t, []string{"quantum"}, queued.Keywords)
	require.Equal(t, "m", queued.DateFilter)
	require.Equal(t, "lab@uni.edu", queued.RecipientEmail)
}

func TestProcessValidation(t *testing.T) {
	srv := newTestServer(&stubRanker{}, &stubQueue{})
	h := srv.routes()

	cases := map[string]string{
		"bad json":     `{`,
		"no recipient": `{"selected_keywords":["a"]}`,
		"too many":     `{"recipient_email":"a@b.org","selected_keywords":["a","b","c","d"]}`,
		"bad recency":  `{"recipient_email":"a@b.org","selected_keywords":["a"],"date_filter":"decade"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/process", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestProcessQueueUnavailable(t *testing.T) {
	body := `{"recipient_email":"a@b.org","selected_keywords":["a"]}`

	rec := do(t, newTestServer(&stubRanker{}, nil).routes(), http.MethodPost, "/api/process", body)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(t, newTestServer(&stubRanker{}, &stubQueue{err: errors.New("down")}).routes(), http.MethodPost, "/api/process", body)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRankRunsPipeline(t *testing.T) {
	text := "body"
	r := &stubRanker{res: pipeline.Result{
		RunID:  "run-1",
		Status: pipeline.StatusOK,
		Ranked: []models.Document{{URL: "https://nsf.gov/1", FullText: &text, Score: 0.5, State: models.StateRanked}},
	}}
	srv := newTestServer(r, nil)

	rec := do(t, srv.routes(), http.MethodPost, "/api/rank", `{"keywords":["chips act"],"date_filter":"d"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, []string{"chips act"}, r.got.Keywords)
	require.Equal(t, models.RecencyDay, r.got.Recency)

	var got struct {
		RunID     string `json:"run_id"`
		Status    string `json:"status"`
		Documents []struct {
			URL   string  `json:"url"`
			Score float64 `json:"relevance_score"`
			State string  `json:"state"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "ok", got.Status)
	require.Len(t, got.Documents, 1)
	require.Equal(t, "ranked", got.Documents[0].State)
}

func TestProcessQueuesEmptyKeywordSet(t *testing.T) {
	q := &stubQueue{}
	srv := newTestServer(&stubRanker{}, q)

	rec := do(t, srv.routes(), http.MethodPost, "/api/process",
		`{"recipient_email":"lab@uni.edu","selected_keywords":[" "]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	queued, ok := q.val.(models.ReportRequest)
	require.True(t, ok)
	require.Empty(t, queued.Keywords)
	require.Equal(t, "w", queued.DateFilter)

	rec = do(t, srv.routes(), http.MethodPost, "/api/process", `{"recipient_email":"lab@uni.edu"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
}

func TestProcessIgnoresUnknownFields(t *testing.T) {
	q := &stubQueue{}
	rec := do(t, newTestServer(&stubRanker{}, q).routes(), http.MethodPost, "/api/process",
		`{"recipient_email":"a@b.org","selected_keywords":["a"],"source":"web-form"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.NotEmpty(t, q.key)
}

func TestRankEmptyKeywordsIsNoInput(t *testing.T) {
	p := pipeline.New(pipeline.Config{Planner: query.NewPlanner(query.DefaultProfile())})
	srv := &server{
		log:    logger.Discard(),
		cfg:    &config.API{RankTimeout: time.Second, MaxKeywords: 3},
		ranker: p,
	}

	rec := do(t, srv.routes(), http.MethodPost, "/api/rank", `{"keywords":["", "  "]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Status    string            `json:"status"`
		Documents []json.RawMessage `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "no_input", got.Status)
	require.NotNil(t, got.Documents)
	require.Empty(t, got.Documents)
}
