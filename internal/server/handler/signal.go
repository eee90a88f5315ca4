package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/oddscope/oddscope/internal/aggregator"
	"github.com/oddscope/oddscope/internal/domain"
)

// SignalHandler serves aggregated per-topic prediction signals.
type SignalHandler struct {
	agg    *aggregator.Aggregator
	logger *slog.Logger
}

// NewSignalHandler creates a SignalHandler over the given aggregator.
func NewSignalHandler(agg *aggregator.Aggregator, logger *slog.Logger) *SignalHandler {
	return &SignalHandler{agg: agg, logger: logger.With(slog.String("handler", "signal"))}
}

// GetSignal aggregates odds and sentiment for one topic.
// GET /api/signal?topic=bitcoin
func (h *SignalHandler) GetSignal(w http.ResponseWriter, r *http.Request) {
	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		writeError(w, http.StatusBadRequest, "missing required query parameter: topic")
		return
	}

	sig, err := h.agg.Aggregate(r.Context(), topic)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTopic) {
			writeError(w, http.StatusBadRequest, "topic must not be empty")
			return
		}
		h.logger.ErrorContext(r.Context(), "aggregation failed",
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "aggregation failed")
		return
	}

	writeJSON(w, http.StatusOK, sig)
}
