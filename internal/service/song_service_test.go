package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mchic/setlist/internal/logging"
	"github.com/mchic/setlist/internal/model"
	"github.com/mchic/setlist/internal/store"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []model.SongEvent
}

func (n *recordingNotifier) Publish(event model.SongEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	types := make([]string, len(n.events))
	for i, e := range n.events {
		types[i] = e.Type
	}
	return types
}

type recordingScheduler struct {
	reasons []string
	err     error
}

func (s *recordingScheduler) ScheduleSnapshot(ctx context.Context, reason string) error {
	s.reasons = append(s.reasons, reason)
	return s.err
}

// rowStore is a Store without reset support.
type rowStore struct {
	store.Store
}

func newTestService(t *testing.T) (*SongService, *recordingNotifier, *recordingScheduler) {
	t.Helper()
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "songs.json"))
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	scheduler := &recordingScheduler{}
	return NewSongService(st, notifier, scheduler, logging.Discard()), notifier, scheduler
}

func TestSongServiceCreate(t *testing.T) {
	ctx := context.Background()
	svc, notifier, scheduler := newTestService(t)

	song, err := svc.Create(ctx, map[string]any{
		"title":       "Il mio canto libero",
		"author":      "Lucio Battisti",
		"voices":      []any{"lucio"},
		"instruments": []any{"basso"},
		"keyOffset":   float64(2),
	})
	require.NoError(t, err)
	require.NotEmpty(t, song.ID)
	require.Equal(t, []model.Instrument{"chitarra", "basso"}, song.Instruments)
	require.Equal(t, 2.0, song.KeyOffset)

	songs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, songs, 7)
	require.Contains(t, songs, song)

	require.Equal(t, []string{model.EventSongCreated}, notifier.types())
	require.Equal(t, []string{"create"}, scheduler.reasons)
}

func TestSongServiceCreateRejected(t *testing.T) {
	ctx := context.Background()
	svc, notifier, scheduler := newTestService(t)

	_, err := svc.Create(ctx, map[string]any{"title": "Senza autore", "voices": []any{"lucio"}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MessageAuthorRequired, verr.Message)

	songs, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, songs, 6)
	require.Empty(t, notifier.types())
	require.Empty(t, scheduler.reasons)
}

func TestSongServiceUpdate(t *testing.T) {
	ctx := context.Background()
	svc, notifier, _ := newTestService(t)

	songs, err := svc.List(ctx)
	require.NoError(t, err)
	target := songs[0]

	updated, err := svc.Update(ctx, target.ID, map[string]any{
		"title":     "Bocca di Rosa (live)",
		"author":    target.Author,
		"voices":    "lucio",
		"keyOffset": "-1",
	})
	require.NoError(t, err)
	require.Equal(t, target.ID, updated.ID)
	require.Equal(t, "Bocca di Rosa (live)", updated.Title)
	require.Equal(t, []model.Voice{"lucio"}, updated.Voices)
	require.Equal(t, []model.Instrument{"chitarra"}, updated.Instruments)
	require.Equal(t, -1.0, updated.KeyOffset)
	require.Equal(t, []string{model.EventSongUpdated}, notifier.types())

	_, err = svc.Update(ctx, "missing", map[string]any{"title": "x", "author": "y", "voices": "lucio"})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSongServiceUpdateValidatesBeforeLookup(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Update(context.Background(), "missing", map[string]any{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, MessageTitleRequired, verr.Message)
}

func TestSongServiceDelete(t *testing.T) {
	ctx := context.Background()
	svc, notifier, _ := newTestService(t)

	songs, err := svc.List(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, songs[0].ID))
	require.ErrorIs(t, svc.Delete(ctx, songs[0].ID), store.ErrNotFound)

	after, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(songs)-1)

	require.Len(t, notifier.events, 1)
	require.Equal(t, model.SongEvent{Type: model.EventSongDeleted, ID: songs[0].ID}, notifier.events[0])
}

func TestSongServiceReset(t *testing.T) {
	ctx := context.Background()
	svc, notifier, _ := newTestService(t)
	require.True(t, svc.CanReset())

	songs, err := svc.List(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, songs[0].ID))

	reset, err := svc.Reset(ctx)
	require.NoError(t, err)
	require.Equal(t, songs, reset)

	require.Equal(t, []string{model.EventSongDeleted, model.EventSongsReset}, notifier.types())
	require.Equal(t, 6, notifier.events[1].Count)
}

func TestSongServiceResetUnsupported(t *testing.T) {
	st, err := store.NewFileStore(filepath.Join(t.TempDir(), "songs.json"))
	require.NoError(t, err)

	svc := NewSongService(rowStore{st}, nil, nil, logging.Discard())
	require.False(t, svc.CanReset())

	_, err = svc.Reset(context.Background())
	require.ErrorIs(t, err, ErrResetUnsupported)
}

func TestSongServiceSnapshotFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	svc, _, scheduler := newTestService(t)
	scheduler.err = errors.New("redis down")

	_, err := svc.Create(ctx, map[string]any{"title": "Gianna", "author": "Rino Gaetano", "voices": "lucio"})
	require.NoError(t, err)
	require.Equal(t, []string{"create"}, scheduler.reasons)
}
