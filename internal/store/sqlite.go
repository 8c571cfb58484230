package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Order-Alone/Order-Alone-Mobile/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		user_name TEXT NOT NULL,
		menu_id TEXT,
		score INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_games_user ON games(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_games_score ON games(score DESC);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveGame persists a finished game record.
func (s *SQLiteStore) SaveGame(ctx context.Context, game *domain.GameRecord) error {
	query := `
	INSERT INTO games (id, user_id, user_name, menu_id, score, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		game.ID, game.UserID, game.UserName, game.MenuID,
		game.Score, game.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// GamesByUser retrieves a user's games, newest first.
func (s *SQLiteStore) GamesByUser(ctx context.Context, userID string, limit int) ([]*domain.GameRecord, error) {
	query := `
	SELECT id, user_id, user_name, menu_id, score, created_at
	FROM games WHERE user_id = ?
	ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query games by user: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// TopGames retrieves the highest-scoring games across all users.
func (s *SQLiteStore) TopGames(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	query := `
	SELECT id, user_id, user_name, menu_id, score, created_at
	FROM games
	ORDER BY score DESC, created_at ASC LIMIT ?`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query top games: %w", err)
	}
	defer rows.Close()
	return scanGames(rows)
}

// BestGame retrieves the user's highest-scoring game.
func (s *SQLiteStore) BestGame(ctx context.Context, userID string) (*domain.GameRecord, error) {
	query := `
	SELECT id, user_id, user_name, menu_id, score, created_at
	FROM games WHERE user_id = ?
	ORDER BY score DESC, created_at ASC LIMIT 1`

	row := s.db.QueryRowContext(ctx, query, userID)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan best game: %w", err)
	}
	return game, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (*domain.GameRecord, error) {
	var game domain.GameRecord
	var menuID sql.NullString
	var createdAt int64

	err := row.Scan(&game.ID, &game.UserID, &game.UserName, &menuID, &game.Score, &createdAt)
	if err != nil {
		return nil, err
	}
	game.MenuID = menuID.String
	game.CreatedAt = time.Unix(createdAt, 0)
	return &game, nil
}

func scanGames(rows *sql.Rows) ([]*domain.GameRecord, error) {
	var games []*domain.GameRecord
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}
	return games, nil
}
