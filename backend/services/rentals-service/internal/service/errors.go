package service

import (
	"fmt"

	"powerbank/backend/services/rentals-service/internal/models"
	"powerbank/backend/services/rentals-service/internal/repository"
)

var (
	ErrRentNotFound = repository.ErrRentNotFound
	ErrConflict     = repository.ErrConflict
)

const (
	reasonSameStatus = "already in this status"
	reasonNotAllowed = "transition not allowed"
	reasonTerminal   = "rent is closed"
	reasonNotRenting = "rent is not in renting status"
)

// InvalidTransitionError rejects a status change. Allowed is the table row for From.
type InvalidTransitionError struct {
	From    models.Status
	To      models.Status
	Allowed []models.Status
	Reason  string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %s to %s: %s", e.From, e.To, e.Reason)
}

func newInvalidTransition(from, to models.Status, reason string) *InvalidTransitionError {
	return &InvalidTransitionError{From: from, To: to, Allowed: AllowedTransitions(from), Reason: reason}
}

// InvalidStatusError reports an unknown status name.
type InvalidStatusError struct {
	Value string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("invalid status %q", e.Value)
}
