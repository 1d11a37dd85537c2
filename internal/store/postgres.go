package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scythe504/partyhub-backend/internal"
)

const roomsSchema = `
CREATE TABLE IF NOT EXISTS rooms (
	code         TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	is_public    BOOLEAN NOT NULL DEFAULT FALSE,
	player_count INT NOT NULL DEFAULT 0,
	max_players  INT NOT NULL DEFAULT 8,
	data         JSONB NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS rooms_waiting_public_idx
	ON rooms (status, is_public) WHERE status = 'waiting' AND is_public;`

// PostgresStore persists rooms as JSONB rows. The row-level columns exist
// only so the lobby listing can filter without unpacking the document.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, roomsSchema); err != nil {
		return fmt.Errorf("failed to ensure rooms schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Find(ctx context.Context, code string) (*internal.Room, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM rooms WHERE code = $1`, code).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find room %s: %w", code, err)
	}
	var room internal.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("failed to decode room %s: %w", code, err)
	}
	return &room, nil
}

func (s *PostgresStore) Save(ctx context.Context, room *internal.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room %s: %w", room.Code, err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE rooms
		 SET status = $2, is_public = $3, player_count = $4, max_players = $5,
		     data = $6, updated_at = now()
		 WHERE code = $1`,
		room.Code, string(room.Status), room.IsPublic, len(room.Players),
		room.MaxPlayers, data)
	if err != nil {
		return fmt.Errorf("failed to save room %s: %w", room.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, room *internal.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("failed to encode room %s: %w", room.Code, err)
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO rooms (code, status, is_public, player_count, max_players, data)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (code) DO NOTHING`,
		room.Code, string(room.Status), room.IsPublic, len(room.Players),
		room.MaxPlayers, data)
	if err != nil {
		return fmt.Errorf("failed to create room %s: %w", room.Code, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, code string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM rooms WHERE code = $1`, code); err != nil {
		return fmt.Errorf("failed to delete room %s: %w", code, err)
	}
	return nil
}

func (s *PostgresStore) FindWaitingPublic(ctx context.Context) ([]*internal.Room, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT data FROM rooms
		 WHERE status = 'waiting' AND is_public AND player_count < max_players
		 ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list waiting rooms: %w", err)
	}
	defer rows.Close()

	out := make([]*internal.Room, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan room row: %w", err)
		}
		var room internal.Room
		if err := json.Unmarshal(data, &room); err != nil {
			return nil, fmt.Errorf("failed to decode room row: %w", err)
		}
		out = append(out, &room)
	}
	return out, rows.Err()
}
