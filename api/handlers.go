package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DeafMist/fed-landscape-radar/internal/config"
	"github.com/DeafMist/fed-landscape-radar/internal/models"
	"github.com/DeafMist/fed-landscape-radar/internal/pipeline"
)

const maxBodyBytes = 1 << 20

type ranker interface {
	Run(ctx context.Context, req pipeline.Request) pipeline.Result
}

type requestQueue interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

type server struct {
	log      *slog.Logger
	cfg      *config.API
	ranker   ranker
	requests requestQueue
	health   func(ctx context.Context) error
}

type errorResponse struct {
	Error string `json:"error"`
}

type processResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	RunID   string `json:"run_id"`
}

type rankRequest struct {
	Keywords   []string `json:"keywords"`
	DateFilter string   `json:"date_filter"`
	Criterion  string   `json:"criterion,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.health(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleProcess queues a report request and answers before the run starts.
func (s *server) handleProcess(w http.ResponseWriter, r *http.Request) {
	if s.requests == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "request queue is disabled"})
		return
	}

	var req models.ReportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	req.RecipientEmail = strings.TrimSpace(req.RecipientEmail)
	if req.RecipientEmail == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "recipient_email is required"})
		return
	}
	keywords, err := s.validateKeywords(req.Keywords)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	recency, err := models.ParseRecency(req.DateFilter)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	req.Keywords = keywords
	req.DateFilter = recency.Code()
	req.RunID = uuid.NewString()

	if err := s.requests.PublishJSON(r.Context(), req.RunID, req); err != nil {
		s.log.Error("enqueue report request", slog.String("run_id", req.RunID), slog.Any("err", err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "could not queue report request"})
		return
	}

	s.log.Info("report request queued",
		slog.String("run_id", req.RunID),
		slog.Int("keywords", len(req.Keywords)),
		slog.String("date_filter", req.DateFilter),
	)
	writeJSON(w, http.StatusAccepted, processResponse{
		Success: true,
		Message: "Report generation started! You will receive an email in a few minutes.",
		RunID:   req.RunID,
	})
}

// handleRank runs the pipeline inline and returns the ranked documents.
func (s *server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	keywords, err := s.validateKeywords(req.Keywords)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	recency, err := models.ParseRecency(req.DateFilter)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.RankTimeout)
	defer cancel()

	res := s.ranker.Run(ctx, pipeline.Request{
		Keywords:  keywords,
		Recency:   recency,
		Criterion: strings.TrimSpace(req.Criterion),
	})

	writeJSON(w, http.StatusOK, res)
}

// validateKeywords trims keywords and drops blanks. An empty set is valid and
// yields a no-input run.
func (s *server) validateKeywords(raw []string) ([]string, error) {
	keywords := make([]string, 0, len(raw))
	for _, kw := range raw {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	if len(keywords) > s.cfg.MaxKeywords {
		return nil, fmt.Errorf("at most %d keywords are allowed", s.cfg.MaxKeywords)
	}
	return keywords, nil
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
