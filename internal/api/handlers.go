package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/datsun80zx/jobinsights/internal/insights"
	"github.com/datsun80zx/jobinsights/internal/model"
	"github.com/datsun80zx/jobinsights/internal/parser"
	"github.com/datsun80zx/jobinsights/internal/store"
)

// unavailableMessage is the only detail a structural failure exposes
const unavailableMessage = "insights unavailable"

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type Handler struct {
	engine       *insights.Engine
	store        store.Store
	logger       *zap.Logger
	maxBodyBytes int64
	queryTimeout time.Duration
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// PortfolioInsights handles POST /api/v1/insights/portfolio
func (h *Handler) PortfolioInsights(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	bundle, err := parser.DecodeBundle(body)
	if err != nil {
		h.unavailable(w, r, err)
		return
	}

	result, err := h.engine.GeneratePortfolioInsights(bundle.Jobs, bundle.Receipts, bundle.Timesheets)
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// JobInsights handles POST /api/v1/insights/job
func (h *Handler) JobInsights(w http.ResponseWriter, r *http.Request) {
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	req, err := parser.DecodeJobRequest(body)
	if err != nil {
		h.unavailable(w, r, err)
		return
	}

	result, err := h.engine.GenerateJobInsights(req.Job, req.Receipts, req.Timesheets)
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// OwnerPortfolioInsights handles GET /api/v1/owners/{owner}/insights
func (h *Handler) OwnerPortfolioInsights(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	ctx, cancel := h.queryContext(r.Context())
	defer cancel()

	bundle, err := h.store.LoadPortfolio(ctx, owner)
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}

	result, err := h.engine.GeneratePortfolioInsights(bundle.Jobs, bundle.Receipts, bundle.Timesheets)
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// OwnerJobInsights handles GET /api/v1/owners/{owner}/jobs/{job}/insights
func (h *Handler) OwnerJobInsights(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")
	jobID := chi.URLParam(r, "job")
	ctx, cancel := h.queryContext(r.Context())
	defer cancel()

	job, err := h.store.GetJob(ctx, owner, jobID)
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	receipts, err := h.store.ListReceipts(ctx, owner, &jobID)
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}
	timesheets, err := h.store.ListTimesheets(ctx, owner, &jobID)
	if err != nil {
		h.storeFailure(w, r, err)
		return
	}

	result, err := h.engine.GenerateJobInsights(job, receipts, timesheets)
	if err != nil {
		h.unavailable(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.queryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.queryTimeout)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	reader := io.Reader(r.Body)
	if h.maxBodyBytes > 0 {
		reader = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}
	return body, true
}

// unavailable reports a structural failure. The cause is logged, never returned.
func (h *Handler) unavailable(w http.ResponseWriter, r *http.Request, err error) {
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get(requestIDHeader)),
		zap.Error(err),
	}
	var engErr *model.EngineError
	if errors.As(err, &engErr) {
		fields = append(fields, zap.String("op", engErr.Op))
	}
	h.logger.Warn("insights unavailable", fields...)
	writeError(w, http.StatusUnprocessableEntity, unavailableMessage)
}

func (h *Handler) storeFailure(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	h.logger.Error("store query failed",
		zap.String("path", r.URL.Path),
		zap.String("request_id", r.Header.Get(requestIDHeader)),
		zap.Error(err),
	)
	writeError(w, http.StatusInternalServerError, "internal error")
}

// writeJSON encodes v before writing the header, so an unencodable value
// becomes a 500 instead of a 200 with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"success":false,"error":"internal error"}`)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Success: false, Error: msg})
}
