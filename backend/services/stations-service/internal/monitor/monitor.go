// Package monitor runs the scheduled offline-station check.
package monitor

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"powerbank/backend/services/stations-service/internal/hours"
	"powerbank/backend/services/stations-service/internal/models"
	"powerbank/backend/services/stations-service/internal/vendors"
)

// DefaultRecheckDelay separates vendor calls during a manual recheck.
const DefaultRecheckDelay = 2 * time.Second

// StationStore is the persistence port the monitor needs.
type StationStore interface {
	ListMonitored(ctx context.Context) ([]models.Station, error)
	UpdateStatus(ctx context.Context, stationID string, online bool, checkedAt time.Time) error
}

// Notifier receives the report of a run with offline stations.
type Notifier interface {
	NotifyOffline(ctx context.Context, result *models.StationCheckResult) error
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// WaitFunc blocks for d or until ctx is done.
type WaitFunc func(ctx context.Context, d time.Duration) error

// Monitor checks stations one at a time.
type Monitor struct {
	stations     StationStore
	fetcher      vendors.Adapter
	notifier     Notifier
	clock        Clock
	wait         WaitFunc
	recheckDelay time.Duration
	logger       *zap.Logger
}

// Option customizes a Monitor.
type Option func(*Monitor)

// WithClock overrides the system clock.
func WithClock(c Clock) Option {
	return func(m *Monitor) { m.clock = c }
}

// WithWait overrides how the recheck delay is spent.
func WithWait(w WaitFunc) Option {
	return func(m *Monitor) { m.wait = w }
}

// WithRecheckDelay overrides DefaultRecheckDelay.
func WithRecheckDelay(d time.Duration) Option {
	return func(m *Monitor) { m.recheckDelay = d }
}

// New builds a monitor.
func New(stations StationStore, fetcher vendors.Adapter, notifier Notifier, logger *zap.Logger, opts ...Option) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Monitor{
		stations:     stations,
		fetcher:      fetcher,
		notifier:     notifier,
		clock:        systemClock{},
		wait:         sleep,
		recheckDelay: DefaultRecheckDelay,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run checks every open monitored station and sends one notification when any is offline.
// A station failure is recorded and never stops the run.
func (m *Monitor) Run(ctx context.Context) (*models.StationCheckResult, error) {
	stations, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	result := newResult(m.clock.Now())
	log := m.logger.With(zap.String("run_id", result.RunID))
	log.Info("station check started", zap.Int("stations", len(stations)))

	for _, st := range stations {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if !hours.IsOpen(st, result.CheckedAt) {
			result.Skipped++
			continue
		}
		m.check(ctx, log, st, result)
	}

	if len(result.OfflineStations) > 0 && m.notifier != nil {
		if err := m.notifier.NotifyOffline(ctx, result); err != nil {
			log.Error("offline notification failed", zap.Error(err))
		} else {
			result.Notified = true
		}
	}

	log.Info("station check finished",
		zap.Int("checked", result.Checked),
		zap.Int("skipped", result.Skipped),
		zap.Int("offline", len(result.OfflineStations)),
		zap.Int("errors", len(result.Errors)),
		zap.Bool("notified", result.Notified),
	)
	return result, nil
}

// RecheckAll checks every monitored station regardless of hours, pausing between vendor
// calls. It never notifies.
func (m *Monitor) RecheckAll(ctx context.Context) (*models.StationCheckResult, error) {
	stations, err := m.load(ctx)
	if err != nil {
		return nil, err
	}

	result := newResult(m.clock.Now())
	log := m.logger.With(zap.String("run_id", result.RunID), zap.Bool("recheck", true))

	called := false
	for _, st := range stations {
		usesVendor := vendors.Resolve(st.ID) != vendors.VendorUnsupported
		if usesVendor && called {
			if err := m.wait(ctx, m.recheckDelay); err != nil {
				return result, err
			}
		}
		m.check(ctx, log, st, result)
		called = called || usesVendor
	}

	log.Info("station recheck finished",
		zap.Int("checked", result.Checked),
		zap.Int("offline", len(result.OfflineStations)),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (m *Monitor) load(ctx context.Context) ([]models.Station, error) {
	stations, err := m.stations.ListMonitored(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stations, func(i, j int) bool { return stations[i].ID < stations[j].ID })
	return stations, nil
}

func (m *Monitor) check(ctx context.Context, log *zap.Logger, st models.Station, result *models.StationCheckResult) {
	v := vendors.Resolve(st.ID)
	result.Checked++

	var (
		slots []models.BatterySlot
		err   error
	)
	if v == vendors.VendorUnsupported {
		err = vendors.ErrUnsupportedStation
	} else {
		slots, err = m.fetcher.FetchBatteries(ctx, st.ID)
	}
	checkedAt := m.clock.Now()

	if err != nil {
		kind := vendors.ErrorKind(err)
		log.Warn("station check failed",
			zap.String("station_id", st.ID),
			zap.String("kind", kind),
			zap.Error(err),
		)
		result.Errors = append(result.Errors, models.StationError{
			StationID: st.ID,
			Kind:      kind,
			Message:   err.Error(),
		})
		return
	}

	online := len(slots) > 0
	if !online {
		result.OfflineStations = append(result.OfflineStations, models.OfflineStation{
			StationID:   st.ID,
			Title:       st.Title,
			Vendor:      v.String(),
			Timezone:    st.Timezone,
			Hours:       st.Hours,
			LastChecked: checkedAt,
		})
	}
	if err := m.stations.UpdateStatus(ctx, st.ID, online, checkedAt); err != nil {
		log.Warn("failed to record station status", zap.String("station_id", st.ID), zap.Error(err))
	}
}

func newResult(now time.Time) *models.StationCheckResult {
	return &models.StationCheckResult{
		RunID:           uuid.NewString(),
		CheckedAt:       now,
		OfflineStations: make([]models.OfflineStation, 0),
		Errors:          make([]models.StationError, 0),
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
