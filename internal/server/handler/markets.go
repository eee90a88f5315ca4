package handler

import (
	"log/slog"
	"net/http"

	"github.com/oddscope/oddscope/internal/snapshot"
)

// MarketsHandler serves the cross-platform market listing sweep.
type MarketsHandler struct {
	builder *snapshot.Builder
	opts    snapshot.Options
	logger  *slog.Logger
}

// NewMarketsHandler creates a MarketsHandler. opts supplies the defaults that
// query parameters may override.
func NewMarketsHandler(builder *snapshot.Builder, opts snapshot.Options, logger *slog.Logger) *MarketsHandler {
	return &MarketsHandler{
		builder: builder,
		opts:    opts,
		logger:  logger.With(slog.String("handler", "markets")),
	}
}

// ListMarkets returns the ranked active markets across all platforms.
// GET /api/markets?min_liquidity=1000&top=25
func (h *MarketsHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	opts := h.opts
	opts.MinLiquidity = queryFloat(r, "min_liquidity", opts.MinLiquidity)
	opts.TopN = queryInt(r, "top", opts.TopN)

	report, err := h.builder.Build(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "snapshot failed", slog.String("error", err.Error()))
		writeError(w, http.StatusBadGateway, "no platform returned listings")
		return
	}

	writeJSON(w, http.StatusOK, report)
}
