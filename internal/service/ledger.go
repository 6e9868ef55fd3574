package service

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/observability"
)

// recordLedger counts one ledger transition attempt by outcome.
func recordLedger(ledger, action string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case models.HasCode(err, models.CodeConflict):
		outcome = "conflict"
	case models.HasCode(err, models.CodePreconditionAbsent):
		outcome = "absent"
	case models.HasCode(err, models.CodeNotFound):
		outcome = "not_found"
	default:
		outcome = "error"
	}
	observability.LedgerTransitions.WithLabelValues(ledger, action, outcome).Inc()
}

func notify(ctx context.Context, p notifications.Publisher, recipientID string, ev notifications.Event) {
	if p == nil {
		return
	}
	p.Notify(ctx, recipientID, ev)
}

func requireCaller(userID string) error {
	if userID == "" {
		return models.NewUnauthorizedError("Authentication required")
	}
	return nil
}
