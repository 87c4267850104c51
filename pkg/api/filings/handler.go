// Package filings exposes the filing sync and parse operations as thin
// JSON-over-HTTP endpoints. Handlers translate requests to pipeline calls
// and return aggregated summaries, never raw errors.
package filings

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"floattrack/pkg/core/ingest"
	"floattrack/pkg/core/pipeline"
)

type Handler struct {
	pipeline *pipeline.Pipeline
	syncer   *ingest.FilingSyncer
}

func NewHandler(p *pipeline.Pipeline, syncer *ingest.FilingSyncer) *Handler {
	return &Handler{pipeline: p, syncer: syncer}
}

type parseRequest struct {
	Ticker string `json:"ticker"`
	Limit  int    `json:"limit"`
}

type parseResponse struct {
	Success   bool   `json:"success"`
	Ticker    string `json:"ticker"`
	Processed int    `json:"processed"`
	Errors    int    `json:"errors"`
	Total     int    `json:"total"`
	Message   string `json:"message"`
}

type syncRequest struct {
	Ticker string `json:"ticker"`
}

type syncResponse struct {
	Success      bool   `json:"success"`
	Ticker       string `json:"ticker"`
	FilingsCount int    `json:"filings_count"`
	NewFilings   int    `json:"new_filings"`
}

// HandleParse runs the extraction pipeline over unprocessed filings.
// POST {"ticker": "ACME", "limit": 5}; limit 0 processes everything.
func (h *Handler) HandleParse(w http.ResponseWriter, r *http.Request) {
	applyCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		writeError(w, http.StatusBadRequest, "ticker symbol is required")
		return
	}

	summary, err := h.pipeline.ProcessFilings(r.Context(), req.Ticker, req.Limit)
	if err != nil {
		if errors.Is(err, pipeline.ErrTickerNotFound) {
			writeError(w, http.StatusNotFound, "Ticker not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "filing parse failed")
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		Success:   true,
		Ticker:    strings.ToUpper(req.Ticker),
		Processed: summary.Processed,
		Errors:    summary.Errors,
		Total:     summary.Total,
		Message:   fmt.Sprintf("Processed %d of %d filings", summary.Processed, summary.Total),
	})
}

// HandleSync pulls the EDGAR filing list for a ticker into the catalog.
// POST {"ticker": "ACME"}.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	applyCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		writeError(w, http.StatusBadRequest, "ticker symbol is required")
		return
	}

	total, inserted, err := h.syncer.Sync(r.Context(), req.Ticker)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "filing sync failed")
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Success:      true,
		Ticker:       strings.ToUpper(req.Ticker),
		FilingsCount: total,
		NewFilings:   inserted,
	})
}

func applyCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
