package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oddscope/oddscope/internal/aggregator"
)

// ArbHandler serves watchlist arbitrage scans.
type ArbHandler struct {
	scanner   *aggregator.Scanner
	watchlist []string
	logger    *slog.Logger
}

// NewArbHandler creates an ArbHandler. watchlist is the default topic list
// used when the request does not name its own topics.
func NewArbHandler(scanner *aggregator.Scanner, watchlist []string, logger *slog.Logger) *ArbHandler {
	return &ArbHandler{
		scanner:   scanner,
		watchlist: watchlist,
		logger:    logger.With(slog.String("handler", "arbitrage")),
	}
}

// ScanWatchlist runs an arbitrage sweep over the configured watchlist, or
// over the comma-separated topics parameter when present.
// GET /api/arbitrage?topics=bitcoin,recession
func (h *ArbHandler) ScanWatchlist(w http.ResponseWriter, r *http.Request) {
	topics := h.watchlist
	if raw := r.URL.Query().Get("topics"); raw != "" {
		topics = topics[:0:0]
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}
	if len(topics) == 0 {
		writeError(w, http.StatusBadRequest, "no topics to scan")
		return
	}

	opportunities, err := h.scanner.Scan(r.Context(), topics)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "scan aborted", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "scan aborted")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"timestamp":     time.Now().UTC().Format(time.RFC3339),
		"topics":        topics,
		"opportunities": opportunities,
	})
}
