package bank

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Provider is a bank the user can link. Connections are simulated.
type Provider struct {
	ID   string
	Name string
}

var providers = []Provider{
	{ID: "mockbank", Name: "Mock Bank"},
	{ID: "monobank", Name: "Monobank"},
	{ID: "privatbank", Name: "PrivatBank"},
}

// Providers returns the supported providers in display order.
func Providers() []Provider {
	out := make([]Provider, len(providers))
	copy(out, providers)

	return out
}

func lookupProvider(id string) (Provider, bool) {
	for _, p := range providers {
		if p.ID == id {
			return p, true
		}
	}

	return Provider{}, false
}

// Status is the state of a bank connection.
type Status string

const (
	StatusConnected    Status = "connected"
	StatusPending      Status = "pending"
	StatusError        Status = "error"
	StatusDisconnected Status = "disconnected"
)

// Connection links a user to a provider.
type Connection struct {
	ID           uuid.UUID
	UserID       int64
	ProviderID   string
	ProviderName string
	Status       Status
	LastSyncedAt *time.Time
	CreatedAt    time.Time
}

const (
	DefaultIntervalHours = 2
	// MaxIntervalHours is the largest interval representable as a time.Duration.
	MaxIntervalHours = int(math.MaxInt64 / int64(time.Hour))
)

// Schedule is a user's automatic sync setting. There is at most one per user.
// NextRunAt is nil whenever Enabled is false.
type Schedule struct {
	ID            uuid.UUID
	UserID        int64
	Enabled       bool
	IntervalHours int
	NextRunAt     *time.Time
}

// DefaultSchedule is the schedule a user has before ever changing it.
func DefaultSchedule(userID int64) *Schedule {
	return &Schedule{
		UserID:        userID,
		Enabled:       false,
		IntervalHours: DefaultIntervalHours,
	}
}

// Transient reports whether the schedule was never persisted.
func (s *Schedule) Transient() bool {
	return s.ID == uuid.Nil
}

func (s *Schedule) interval() time.Duration {
	return time.Duration(s.IntervalHours) * time.Hour
}

func (s *Schedule) apply(enabled bool, intervalHours int, now time.Time) {
	s.Enabled = enabled
	s.IntervalHours = intervalHours

	if !enabled {
		s.NextRunAt = nil
		return
	}

	next := now.Add(s.interval())
	s.NextRunAt = &next
}
