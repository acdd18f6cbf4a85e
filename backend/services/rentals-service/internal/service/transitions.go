package service

import (
	"strings"

	"powerbank/backend/services/rentals-service/internal/models"
)

var validStatuses = []models.Status{
	models.StatusRenting,
	models.StatusRented,
	models.StatusPaid,
	models.StatusInProgress,
	models.StatusCancelled,
}

// transitions lists the allowed targets per state. Terminal states map to an empty set.
var transitions = map[models.Status][]models.Status{
	models.StatusRenting:    {models.StatusRented, models.StatusCancelled},
	models.StatusRented:     {models.StatusPaid, models.StatusCancelled},
	models.StatusPaid:       {},
	models.StatusInProgress: {models.StatusRenting, models.StatusRented, models.StatusCancelled},
	models.StatusCancelled:  {},
}

// ValidStatuses returns every known status.
func ValidStatuses() []models.Status {
	out := make([]models.Status, len(validStatuses))
	copy(out, validStatuses)
	return out
}

// AllowedTransitions returns the targets reachable from status. Unknown and terminal
// states yield an empty, non-nil slice.
func AllowedTransitions(status models.Status) []models.Status {
	allowed := transitions[status]
	out := make([]models.Status, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransition reports whether from -> to is in the table.
func CanTransition(from, to models.Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether status accepts no further transitions.
func IsTerminal(status models.Status) bool {
	allowed, ok := transitions[status]
	return ok && len(allowed) == 0
}

// ParseStatus validates a status name.
func ParseStatus(value string) (models.Status, error) {
	candidate := models.Status(strings.TrimSpace(value))
	for _, s := range validStatuses {
		if s == candidate {
			return s, nil
		}
	}
	return "", &InvalidStatusError{Value: value}
}
