// Package store persists the setlist. Two interchangeable implementations
// exist: [FileStore], which keeps the whole collection in one JSON document,
// and [PostgresStore], which keeps one row per song. [New] picks one from the
// configuration; callers only ever see [Store].
package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mchic/setlist/internal/config"
	"github.com/mchic/setlist/internal/model"
)

// ErrNotFound is returned by Update and Delete for an unknown id.
var ErrNotFound = errors.New("song not found")

//go:embed seed.json
var seedDocument []byte

// Store is the capability set shared by every backend.
type Store interface {
	List(ctx context.Context) ([]model.Song, error)
	// Insert assigns a fresh id and stores the song.
	Insert(ctx context.Context, in model.SongInput) (model.Song, error)
	// Update replaces every field but the id. Returns ErrNotFound for an unknown id.
	Update(ctx context.Context, id string, in model.SongInput) (model.Song, error)
	// Delete removes the song. Returns ErrNotFound for an unknown id.
	Delete(ctx context.Context, id string) error
	Close() error
}

// Resetter is implemented by backends that can restore the seed setlist.
type Resetter interface {
	ResetToSeed(ctx context.Context) ([]model.Song, error)
}

// New opens the backend selected by cfg.Storage.Driver.
func New(ctx context.Context, cfg *config.Config, logger *log.Logger) (Store, error) {
	switch cfg.Storage.Driver {
	case config.DriverFile:
		logger.Info("using file store", "path", cfg.Storage.FilePath)
		return NewFileStore(cfg.Storage.FilePath)
	case config.DriverPostgres:
		logger.Info("using postgres store", "env", cfg.Server.Env)
		return NewPostgresStore(ctx, cfg.Database.URL)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// Seed returns a fresh copy of the embedded seed setlist.
func Seed() ([]model.Song, error) {
	var songs []model.Song
	if err := json.Unmarshal(seedDocument, &songs); err != nil {
		return nil, fmt.Errorf("failed to parse seed document: %w", err)
	}
	return songs, nil
}

// sortSongs orders by author then title, ignoring case.
func sortSongs(songs []model.Song) {
	sort.SliceStable(songs, func(i, j int) bool {
		ai, aj := strings.ToLower(songs[i].Author), strings.ToLower(songs[j].Author)
		if ai != aj {
			return ai < aj
		}
		return strings.ToLower(songs[i].Title) < strings.ToLower(songs[j].Title)
	})
}
