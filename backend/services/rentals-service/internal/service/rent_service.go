package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"powerbank/backend/services/rentals-service/internal/models"
)

// Store is the persistence port the service needs.
type Store interface {
	Get(ctx context.Context, id string) (*models.Rent, error)
	Update(ctx context.Context, rent *models.Rent, expectedRevision int64) error
	ListByStatus(ctx context.Context, status models.Status, limit int) ([]models.Rent, error)
}

// RentService validates and applies rent status changes.
type RentService struct {
	store  Store
	now    func() time.Time
	logger *zap.Logger
}

// Option customises RentService.
type Option func(*RentService)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *RentService) { s.now = now }
}

// NewRentService builds service.
func NewRentService(store Store, logger *zap.Logger, opts ...Option) *RentService {
	s := &RentService{
		store:  store,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TransitionInput is a requested status change. Optional fields only matter for rented.
type TransitionInput struct {
	RentID       string
	Status       models.Status
	EndStationID *string
	EndDate      *time.Time
}

// TransitionResult reports the applied change and the fields derived along the way.
type TransitionResult struct {
	RentID        string        `json:"rentId"`
	Previous      models.Status `json:"previousStatus"`
	Current       models.Status `json:"newStatus"`
	EndStationID  *string       `json:"endStationId,omitempty"`
	EndDate       *time.Time    `json:"endDate,omitempty"`
	UsageDuration *int          `json:"usageDuration,omitempty"`
}

// StatusView describes where a rent can go from its current state.
type StatusView struct {
	RentID             string          `json:"rentId"`
	CurrentStatus      models.Status   `json:"currentStatus"`
	AllowedTransitions []models.Status `json:"allowedTransitions"`
	ValidStatuses      []models.Status `json:"validStatuses"`
}

// Transition applies a generic status change.
func (s *RentService) Transition(ctx context.Context, in TransitionInput) (*TransitionResult, error) {
	rent, err := s.load(ctx, in.RentID)
	if err != nil {
		return nil, err
	}
	from := rent.Status
	if in.Status == from {
		return nil, newInvalidTransition(from, in.Status, reasonSameStatus)
	}
	if IsTerminal(from) {
		return nil, newInvalidTransition(from, in.Status, reasonTerminal)
	}
	if !CanTransition(from, in.Status) {
		return nil, newInvalidTransition(from, in.Status, reasonNotAllowed)
	}

	now := s.now().UTC()
	result := &TransitionResult{RentID: rent.ID, Previous: from, Current: in.Status}

	if in.Status == models.StatusRented {
		end := firstTime(in.EndDate, rent.EndDate, now)
		station := firstString(in.EndStationID, rent.EndStationID, rent.StartStationID)
		rent.EndDate = &end
		rent.EndStationID = &station
		result.EndDate = &end
		result.EndStationID = &station

		if rent.StartDate != nil && rent.UsageDuration == nil {
			minutes := usageMinutes(*rent.StartDate, end)
			rent.UsageDuration = &minutes
			result.UsageDuration = &minutes
		}
	}

	rent.Status = in.Status
	if err := s.save(ctx, rent, now); err != nil {
		return nil, err
	}

	s.logger.Info("rent status changed",
		zap.String("rent_id", rent.ID),
		zap.String("from", string(from)),
		zap.String("to", string(in.Status)),
	)
	return result, nil
}

// CompleteRenting moves a renting rent to rented with the given end point. The duration is
// recomputed from the start date every time.
func (s *RentService) CompleteRenting(ctx context.Context, rentID, endStationID string, endDate time.Time) (*TransitionResult, error) {
	rent, err := s.load(ctx, rentID)
	if err != nil {
		return nil, err
	}
	if rent.Status != models.StatusRenting {
		return nil, newInvalidTransition(rent.Status, models.StatusRented, reasonNotRenting)
	}

	end := endDate.UTC()
	station := endStationID
	rent.EndStationID = &station
	rent.EndDate = &end
	result := &TransitionResult{
		RentID:       rent.ID,
		Previous:     models.StatusRenting,
		Current:      models.StatusRented,
		EndStationID: &station,
		EndDate:      &end,
	}
	if rent.StartDate != nil {
		minutes := usageMinutes(*rent.StartDate, end)
		rent.UsageDuration = &minutes
		result.UsageDuration = &minutes
	}

	rent.Status = models.StatusRented
	if err := s.save(ctx, rent, s.now().UTC()); err != nil {
		return nil, err
	}

	s.logger.Info("rent completed",
		zap.String("rent_id", rent.ID),
		zap.String("end_station_id", station),
	)
	return result, nil
}

// Status returns the current state and its allowed transitions.
func (s *RentService) Status(ctx context.Context, rentID string) (*StatusView, error) {
	rent, err := s.load(ctx, rentID)
	if err != nil {
		return nil, err
	}
	return &StatusView{
		RentID:             rent.ID,
		CurrentStatus:      rent.Status,
		AllowedTransitions: AllowedTransitions(rent.Status),
		ValidStatuses:      ValidStatuses(),
	}, nil
}

// List returns rents filtered by an optional status name.
func (s *RentService) List(ctx context.Context, status string, limit int) ([]models.Rent, error) {
	var filter models.Status
	if strings.TrimSpace(status) != "" {
		parsed, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = parsed
	}
	return s.store.ListByStatus(ctx, filter, limit)
}

func (s *RentService) load(ctx context.Context, rentID string) (*models.Rent, error) {
	if strings.TrimSpace(rentID) == "" {
		return nil, ErrRentNotFound
	}
	return s.store.Get(ctx, rentID)
}

func (s *RentService) save(ctx context.Context, rent *models.Rent, now time.Time) error {
	rent.UpdatedAt = now
	if err := s.store.Update(ctx, rent, rent.Revision); err != nil {
		if errors.Is(err, ErrConflict) {
			s.logger.Warn("rent changed concurrently", zap.String("rent_id", rent.ID))
		}
		return err
	}
	return nil
}

func usageMinutes(start, end time.Time) int {
	return int(math.Round(end.Sub(start).Minutes()))
}

func firstTime(provided, existing *time.Time, fallback time.Time) time.Time {
	if provided != nil && !provided.IsZero() {
		return provided.UTC()
	}
	if existing != nil && !existing.IsZero() {
		return existing.UTC()
	}
	return fallback
}

func firstString(provided, existing *string, fallback string) string {
	if provided != nil && strings.TrimSpace(*provided) != "" {
		return *provided
	}
	if existing != nil && strings.TrimSpace(*existing) != "" {
		return *existing
	}
	return fallback
}
