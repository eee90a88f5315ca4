// Package notify delivers arbitrage alerts to external channels. Alerts are
// dispatched to every registered sender (Telegram, Discord); a single sender
// failing does not block the others.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/oddscope/oddscope/internal/aggregator"
)

// Sender is the interface that each notification channel must implement.
type Sender interface {
	// Send delivers a notification with the given title and message body.
	Send(ctx context.Context, title, message string) error
	// Name returns a human-readable identifier for the sender (e.g. "telegram").
	Name() string
}

// Notifier dispatches alerts to one or more Senders.
type Notifier struct {
	senders []Sender
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that will deliver to the given senders.
func NewNotifier(senders []Sender, logger *slog.Logger) *Notifier {
	return &Notifier{
		senders: senders,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Enabled reports whether at least one sender is configured, so callers can
// skip alert formatting entirely when nothing would be delivered.
func (n *Notifier) Enabled() bool {
	return len(n.senders) > 0
}

// ArbAlert formats and delivers one watchlist arbitrage hit.
func (n *Notifier) ArbAlert(ctx context.Context, opp aggregator.ArbOpportunity) error {
	title := fmt.Sprintf("Arbitrage: %s", opp.Topic)

	var b strings.Builder
	fmt.Fprintf(&b, "Spread %.2f (%s)\n", opp.Spread, opp.Direction)
	for platform, odds := range opp.Odds {
		if odds.HasYes() {
			fmt.Fprintf(&b, "%s: yes %.2f\n", platform, *odds.Yes)
		}
	}
	fmt.Fprintf(&b, "at %s", opp.Timestamp)

	return n.dispatch(ctx, title, b.String())
}

// dispatch iterates over all senders and sends the notification. Errors from
// individual senders are collected and returned as a combined error; a single
// sender failure does not prevent delivery to the remaining senders.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	if len(n.senders) == 0 {
		return nil
	}

	var errs []string
	for _, s := range n.senders {
		if err := s.Send(ctx, title, message); err != nil {
			n.logger.ErrorContext(ctx, "sender failed",
				slog.String("sender", s.Name()),
				slog.String("error", err.Error()),
			)
			errs = append(errs, fmt.Sprintf("%s: %v", s.Name(), err))
		} else {
			n.logger.DebugContext(ctx, "notification sent",
				slog.String("sender", s.Name()),
				slog.String("title", title),
			)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notify: %d sender(s) failed: %s", len(errs), strings.Join(errs, "; "))
	}
	return nil
}
