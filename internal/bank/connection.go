package bank

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ConnectionService manages simulated bank links. Store outages are reported as
// success on the write paths and as an empty list on reads.
type ConnectionService struct {
	repo    Repository
	timeout time.Duration
	now     func() time.Time
}

func NewConnectionService(repo Repository, opts Options) *ConnectionService {
	opts = opts.withDefaults()

	return &ConnectionService{
		repo:    repo,
		timeout: opts.StoreTimeout,
		now:     opts.Now,
	}
}

func (s *ConnectionService) List(ctx context.Context, userID int64) ([]*Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conns, err := s.repo.ListConnections(ctx, userID)
	if err != nil {
		if !Degradable(err) {
			return nil, fmt.Errorf("listing connections: %w", err)
		}

		slog.Warn("connection list degraded to empty", "user_id", userID, "error", err)

		return []*Connection{}, nil
	}

	return conns, nil
}

// Connect links the user to providerID. The mock providers connect immediately.
// If the store is down the returned id is ephemeral.
func (s *ConnectionService) Connect(ctx context.Context, userID int64, providerID string) (uuid.UUID, error) {
	providerID = strings.TrimSpace(providerID)
	if providerID == "" {
		return uuid.Nil, invalid(CodeProviderRequired, "providerId", errors.New("providerId required"))
	}

	p, ok := lookupProvider(providerID)
	if !ok {
		return uuid.Nil, invalid(CodeUnknownProvider, "providerId", fmt.Errorf("unknown provider %q", providerID))
	}

	conn := &Connection{
		UserID:       userID,
		ProviderID:   p.ID,
		ProviderName: p.Name,
		Status:       StatusConnected,
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.CreateConnection(ctx, conn); err != nil {
		if !Degradable(err) {
			return uuid.Nil, fmt.Errorf("creating connection: %w", err)
		}

		slog.Warn("connection not persisted", "user_id", userID, "provider", p.ID, "error", err)

		return uuid.New(), nil
	}

	return conn.ID, nil
}

func (s *ConnectionService) Disconnect(ctx context.Context, userID int64, id uuid.UUID) error {
	return s.update(ctx, userID, id, func(c *Connection) {
		c.Status = StatusDisconnected
	})
}

// SyncNow marks the connection as freshly synced. Repeating it is harmless.
func (s *ConnectionService) SyncNow(ctx context.Context, userID int64, id uuid.UUID) error {
	now := s.now()

	return s.update(ctx, userID, id, func(c *Connection) {
		c.LastSyncedAt = &now
		c.Status = StatusConnected
	})
}

// update applies mut to the user's connection. Only a missing connection is an
// error; store outages are logged and swallowed.
func (s *ConnectionService) update(ctx context.Context, userID int64, id uuid.UUID, mut func(*Connection)) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	conn, err := s.repo.GetConnection(ctx, userID, id)
	if err == nil {
		mut(conn)
		err = s.repo.UpdateConnection(ctx, conn)
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return ErrNotFound
	case Degradable(err):
		slog.Warn("connection update not persisted", "user_id", userID, "connection_id", id, "error", err)
		return nil
	default:
		return fmt.Errorf("updating connection: %w", err)
	}
}
