// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/domain"
)

// Repository defines the interface for persisting finished game records.
// Records are the local ranking source: written once per session at the
// Ended transition and never updated, so rankings stay available even when
// the Order Service is unreachable.
type Repository interface {
	// SaveGame persists a finished game record.
	SaveGame(ctx context.Context, game *domain.GameRecord) error

	// GamesByUser retrieves a user's games, newest first.
	GamesByUser(ctx context.Context, userID string, limit int) ([]*domain.GameRecord, error)

	// TopGames retrieves the highest-scoring games across all users.
	TopGames(ctx context.Context, limit int) ([]*domain.GameRecord, error)

	// BestGame retrieves the user's highest-scoring game, or nil when the
	// user has none.
	BestGame(ctx context.Context, userID string) (*domain.GameRecord, error)

	// Ping verifies database connectivity and returns an error if the
	// database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
