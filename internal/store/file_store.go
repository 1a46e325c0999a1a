package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"github.com/mchic/setlist/internal/model"
)

// FileStore keeps the whole setlist in a single JSON document and rewrites
// it on every mutation. The mutex only serializes callers inside this
// process; two processes sharing a file still race, last writer wins.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore opens the document at path, creating its directory and
// writing the seed setlist when the file does not exist yet.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &FileStore{path: path}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		seed, err := Seed()
		if err != nil {
			return nil, err
		}
		if err := s.write(seed); err != nil {
			return nil, fmt.Errorf("failed to seed data file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat data file: %w", err)
	}

	return s, nil
}

// Path returns the location of the JSON document.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) List(ctx context.Context) ([]model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	songs, err := s.read()
	if err != nil {
		return nil, err
	}
	sortSongs(songs)
	return songs, nil
}

func (s *FileStore) Insert(ctx context.Context, in model.SongInput) (model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	songs, err := s.read()
	if err != nil {
		return model.Song{}, err
	}

	song := in.WithID(uuid.NewString())
	songs = append(songs, song)

	if err := s.write(songs); err != nil {
		return model.Song{}, err
	}
	return song, nil
}

func (s *FileStore) Update(ctx context.Context, id string, in model.SongInput) (model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	songs, err := s.read()
	if err != nil {
		return model.Song{}, err
	}

	for i := range songs {
		if songs[i].ID != id {
			continue
		}
		songs[i] = in.WithID(id)
		if err := s.write(songs); err != nil {
			return model.Song{}, err
		}
		return songs[i], nil
	}
	return model.Song{}, ErrNotFound
}

func (s *FileStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	songs, err := s.read()
	if err != nil {
		return err
	}

	kept := songs[:0]
	for _, song := range songs {
		if song.ID != id {
			kept = append(kept, song)
		}
	}
	if len(kept) == len(songs) {
		return ErrNotFound
	}
	return s.write(kept)
}

// ResetToSeed overwrites the document with the embedded seed setlist.
func (s *FileStore) ResetToSeed(ctx context.Context) ([]model.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	songs, err := Seed()
	if err != nil {
		return nil, err
	}
	if err := s.write(songs); err != nil {
		return nil, err
	}
	sortSongs(songs)
	return songs, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) read() ([]model.Song, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Song{}, nil
	}

	var songs []model.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("failed to parse data file: %w", err)
	}
	if songs == nil {
		songs = []model.Song{}
	}
	return songs, nil
}

// write replaces the document atomically through a temp file and rename.
func (s *FileStore) write(songs []model.Song) error {
	if songs == nil {
		songs = []model.Song{}
	}
	data, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode songs: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".songs-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}
