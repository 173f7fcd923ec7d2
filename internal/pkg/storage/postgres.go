package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
	_ "github.com/lib/pq"
)

// PostgresStore keeps the state in the opening_competitions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("PostgreSQL state store initialized")
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS opening_competitions (
		bookmaker VARCHAR(200) NOT NULL,
		competition VARCHAR(500) NOT NULL,
		first_seen TIMESTAMPTZ NOT NULL,
		PRIMARY KEY (bookmaker, competition)
	);

	CREATE INDEX IF NOT EXISTS idx_opening_competitions_first_seen ON opening_competitions(first_seen);
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

func (s *PostgresStore) Load(ctx context.Context) (Competitions, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT bookmaker, competition, first_seen FROM opening_competitions`)
	if err != nil {
		return nil, fmt.Errorf("query competitions: %w", err)
	}
	defer rows.Close()

	out := Competitions{}
	for rows.Next() {
		var id models.Identity
		var seen time.Time
		if err := rows.Scan(&id.Bookmaker, &id.Competition, &seen); err != nil {
			return nil, fmt.Errorf("scan competition: %w", err)
		}
		out[id] = seen
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate competitions: %w", err)
	}
	return out, nil
}

// Save replaces the table content in one transaction.
func (s *PostgresStore) Save(ctx context.Context, c Competitions) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM opening_competitions`); err != nil {
		return fmt.Errorf("clear competitions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO opening_competitions (bookmaker, competition, first_seen) VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, id := range c.Identities() {
		if _, err := stmt.ExecContext(ctx, id.Bookmaker, id.Competition, c[id].UTC()); err != nil {
			return fmt.Errorf("insert %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
