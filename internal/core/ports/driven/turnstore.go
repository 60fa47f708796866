// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import (
	"context"

	"github.com/campuskit/tutorbot/internal/core/domain"
)

// TurnStore persists conversation turns per session.
type TurnStore interface {
	// Append stores a turn at the end of the session and evicts the
	// oldest turns beyond the retention limit.
	Append(ctx context.Context, key domain.SessionKey, turn domain.Turn) error

	// Recent returns up to limit turns in chronological order, oldest
	// first. The newest turns win when the session holds more.
	Recent(ctx context.Context, key domain.SessionKey, limit int) ([]domain.Turn, error)

	// Close releases resources.
	Close() error
}
