// Package marketdata exposes the price-series sync as a thin endpoint.
package marketdata

import (
	"encoding/json"
	"net/http"
	"strings"

	"floattrack/pkg/core/ingest"
)

type Handler struct {
	syncer *ingest.MarketDataSyncer
}

func NewHandler(syncer *ingest.MarketDataSyncer) *Handler {
	return &Handler{syncer: syncer}
}

type syncRequest struct {
	Ticker string `json:"ticker"`
}

type syncResponse struct {
	Success    bool   `json:"success"`
	Ticker     string `json:"ticker"`
	DataPoints int    `json:"data_points"`
}

// HandleSync fetches and stores the merged price series for a ticker.
// POST {"ticker": "ACME"}.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Ticker) == "" {
		http.Error(w, "ticker symbol is required", http.StatusBadRequest)
		return
	}

	written, err := h.syncer.Sync(r.Context(), req.Ticker)
	if err != nil {
		http.Error(w, "market data sync failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(syncResponse{
		Success:    true,
		Ticker:     strings.ToUpper(req.Ticker),
		DataPoints: written,
	})
}
