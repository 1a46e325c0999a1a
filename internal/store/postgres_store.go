package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mchic/setlist/internal/model"
)

const statementTimeout = 5 * time.Second

const createSongsTable = `
CREATE TABLE IF NOT EXISTS songs (
	id          text PRIMARY KEY,
	author      text NOT NULL,
	title       text NOT NULL,
	voices      text[] NOT NULL DEFAULT '{}',
	instruments text[] NOT NULL DEFAULT '{}',
	key_offset  double precision NOT NULL DEFAULT 0
)`

const songColumns = `id, author, title, voices, instruments, key_offset`

// PostgresStore keeps one row per song. Every mutation is a single
// statement. It has no reset-to-seed.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and makes sure the songs table exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createSongsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create songs table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]model.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	query := `SELECT ` + songColumns + ` FROM songs ORDER BY lower(author), lower(title)`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error fetching songs: %w", err)
	}
	defer rows.Close()

	songs := []model.Song{}
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return songs, nil
}

func (s *PostgresStore) Insert(ctx context.Context, in model.SongInput) (model.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	query := `INSERT INTO songs (` + songColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + songColumns
	row := s.pool.QueryRow(ctx, query,
		uuid.NewString(), in.Author, in.Title, in.Voices, in.Instruments, in.KeyOffset)

	song, err := scanSong(row)
	if err != nil {
		return model.Song{}, fmt.Errorf("error inserting song: %w", err)
	}
	return song, nil
}

func (s *PostgresStore) Update(ctx context.Context, id string, in model.SongInput) (model.Song, error) {
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	query := `UPDATE songs
		SET author = $1, title = $2, voices = $3, instruments = $4, key_offset = $5
		WHERE id = $6
		RETURNING ` + songColumns
	row := s.pool.QueryRow(ctx, query,
		in.Author, in.Title, in.Voices, in.Instruments, in.KeyOffset, id)

	song, err := scanSong(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Song{}, ErrNotFound
	}
	if err != nil {
		return model.Song{}, fmt.Errorf("error updating song %s: %w", id, err)
	}
	return song, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, statementTimeout)
	defer cancel()

	tag, err := s.pool.Exec(ctx, `DELETE FROM songs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error deleting song %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanSong(row pgx.Row) (model.Song, error) {
	var (
		song        model.Song
		voices      []string
		instruments []string
	)
	if err := row.Scan(&song.ID, &song.Author, &song.Title, &voices, &instruments, &song.KeyOffset); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Song{}, err
		}
		return model.Song{}, fmt.Errorf("error scanning row: %w", err)
	}
	song.Voices = nonNil(voices)
	song.Instruments = nonNil(instruments)
	return song, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
