package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mchic/setlist/internal/metrics"
	"github.com/mchic/setlist/internal/model"
	"github.com/mchic/setlist/internal/store"
)

// ErrResetUnsupported is returned by Reset when the active store has no seed.
var ErrResetUnsupported = errors.New("reset not supported by this store")

// Notifier receives every successful change to the setlist
type Notifier interface {
	Publish(event model.SongEvent)
}

// SnapshotScheduler queues a background snapshot after a change
type SnapshotScheduler interface {
	ScheduleSnapshot(ctx context.Context, reason string) error
}

// SongService validates payloads and applies them to the store
type SongService struct {
	store     store.Store
	notifier  Notifier
	snapshots SnapshotScheduler
	logger    *log.Logger
}

// NewSongService wires the store with optional notifier and snapshot
// scheduler; either may be nil.
func NewSongService(st store.Store, notifier Notifier, snapshots SnapshotScheduler, logger *log.Logger) *SongService {
	return &SongService{
		store:     st,
		notifier:  notifier,
		snapshots: snapshots,
		logger:    logger,
	}
}

func (s *SongService) List(ctx context.Context) ([]model.Song, error) {
	songs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}
	return songs, nil
}

// Create normalizes raw and stores it under a new id
func (s *SongService) Create(ctx context.Context, raw map[string]any) (model.Song, error) {
	in, err := s.normalize(raw)
	if err != nil {
		return model.Song{}, err
	}

	song, err := s.store.Insert(ctx, in)
	if err != nil {
		return model.Song{}, fmt.Errorf("failed to insert song: %w", err)
	}

	s.changed(ctx, "create", model.SongEvent{Type: model.EventSongCreated, Song: &song})
	return song, nil
}

// Update normalizes raw and replaces the song with the given id
func (s *SongService) Update(ctx context.Context, id string, raw map[string]any) (model.Song, error) {
	in, err := s.normalize(raw)
	if err != nil {
		return model.Song{}, err
	}

	song, err := s.store.Update(ctx, id, in)
	if errors.Is(err, store.ErrNotFound) {
		return model.Song{}, err
	}
	if err != nil {
		return model.Song{}, fmt.Errorf("failed to update song: %w", err)
	}

	s.changed(ctx, "update", model.SongEvent{Type: model.EventSongUpdated, Song: &song})
	return song, nil
}

func (s *SongService) Delete(ctx context.Context, id string) error {
	err := s.store.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	s.changed(ctx, "delete", model.SongEvent{Type: model.EventSongDeleted, ID: id})
	return nil
}

// CanReset reports whether the active store can restore the seed setlist
func (s *SongService) CanReset() bool {
	_, ok := s.store.(store.Resetter)
	return ok
}

// Reset restores the seed setlist
func (s *SongService) Reset(ctx context.Context) ([]model.Song, error) {
	resetter, ok := s.store.(store.Resetter)
	if !ok {
		return nil, ErrResetUnsupported
	}

	songs, err := resetter.ResetToSeed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reset songs: %w", err)
	}

	s.changed(ctx, "reset", model.SongEvent{Type: model.EventSongsReset, Count: len(songs)})
	return songs, nil
}

func (s *SongService) normalize(raw map[string]any) (model.SongInput, error) {
	in, err := NormalizeSong(raw)
	if err != nil {
		metrics.ValidationRejections.Inc()
		return model.SongInput{}, err
	}
	return in, nil
}

// changed runs the side effects of a successful mutation. Failures are
// logged; the mutation itself already succeeded.
func (s *SongService) changed(ctx context.Context, op string, event model.SongEvent) {
	metrics.SongMutations.WithLabelValues(op).Inc()

	if s.notifier != nil {
		s.notifier.Publish(event)
	}

	if s.snapshots != nil {
		if err := s.snapshots.ScheduleSnapshot(ctx, op); err != nil {
			s.logger.Warn("failed to schedule snapshot", "op", op, "err", err)
		}
	}
}
