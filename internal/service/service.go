// Package service implements the splitwiser.v1 Connect services on top of
// the calculator and storage packages.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/events"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// Deps are the collaborators shared by both services.
type Deps struct {
	Store     storage.Store
	Publisher events.Publisher
	Metrics   *metrics.Metrics

	// DefaultCurrency is used for groups created without one.
	DefaultCurrency string

	// SessionIdleTimeout bounds how long an untouched split session lives.
	SessionIdleTimeout time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New(prometheus.NewRegistry())
	}
	if d.DefaultCurrency == "" {
		d.DefaultCurrency = "USD"
	}
	if d.SessionIdleTimeout <= 0 {
		d.SessionIdleTimeout = 30 * time.Minute
	}
	return d
}

// publish hands an event to the publisher. Ledger writes have already
// committed, so failures are logged and counted but never returned.
func publish(ctx context.Context, d Deps, event events.Event) {
	result := "ok"
	if err := d.Publisher.Publish(ctx, event); err != nil {
		result = "error"
		slog.Error("Failed to publish event",
			"type", event.Type,
			"group_id", event.GroupID,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
	d.Metrics.EventsPublished.WithLabelValues(string(event.Type), result).Inc()
}

// toConnectError maps domain errors onto Connect codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, errSessionNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, calculator.ErrInvalidAllocation),
		errors.Is(err, calculator.ErrEmptyParticipantSet),
		errors.Is(err, calculator.ErrDuplicateMember),
		errors.Is(err, calculator.ErrUnknownMember),
		errors.Is(err, calculator.ErrUnknownMode),
		errors.Is(err, money.ErrPrecision),
		errors.Is(err, money.ErrOutOfRange):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, calculator.ErrModeMismatch):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func invalidArgument(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}

func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalidArgument("%s required", name)
	}
	return nil
}

// parseAmount converts a non-negative decimal into minor units.
func parseAmount(field string, d decimal.Decimal) (money.Amount, error) {
	amount, err := money.AmountFromDecimal(d)
	if err != nil {
		return 0, invalidArgument("%s: %v", field, err)
	}
	if amount < 0 {
		return 0, invalidArgument("%s must not be negative", field)
	}
	return amount, nil
}

// normalizeMembers trims names and rejects blanks and duplicates.
func normalizeMembers(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, invalidArgument("member names must not be empty")
		}
		if seen[name] {
			return nil, invalidArgument("duplicate member %q", name)
		}
		seen[name] = true
		out = append(out, name)
	}
	return out, nil
}
