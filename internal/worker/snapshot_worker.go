package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hibiken/asynq"

	"github.com/mchic/setlist/internal/model"
	"github.com/mchic/setlist/internal/store"
)

const (
	snapshotPrefix     = "setlist-"
	snapshotSuffix     = ".json"
	snapshotTimeLayout = "20060102T150405.000000000Z"
)

// SnapshotWorker writes the current setlist to the backup directory
type SnapshotWorker struct {
	store  store.Store
	dir    string
	keep   int
	logger *log.Logger
	now    func() time.Time
}

// NewSnapshotWorker creates a worker keeping at most keep snapshots in dir
func NewSnapshotWorker(st store.Store, dir string, keep int, logger *log.Logger) *SnapshotWorker {
	if keep < 1 {
		keep = 1
	}
	return &SnapshotWorker{
		store:  st,
		dir:    dir,
		keep:   keep,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ProcessTask handles snapshot task processing
func (w *SnapshotWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.SnapshotPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		// retrying cannot fix a malformed payload
		return fmt.Errorf("failed to unmarshal snapshot payload: %v: %w", err, asynq.SkipRetry)
	}

	path, err := w.Write(ctx, payload.Reason)
	if err != nil {
		return err
	}

	w.logger.Info("snapshot written", "path", path, "reason", payload.Reason)
	return nil
}

// Write stores a snapshot file and prunes the oldest ones. It returns the new file's path.
func (w *SnapshotWorker) Write(ctx context.Context, reason string) (string, error) {
	songs, err := w.store.List(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to list songs: %w", err)
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	takenAt := w.now()
	data, err := json.MarshalIndent(model.Snapshot{
		TakenAt: takenAt,
		Reason:  reason,
		Songs:   songs,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode snapshot: %w", err)
	}

	path := filepath.Join(w.dir, snapshotPrefix+takenAt.Format(snapshotTimeLayout)+snapshotSuffix)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := w.prune(); err != nil {
		w.logger.Warn("failed to prune snapshots", "dir", w.dir, "err", err)
	}
	return path, nil
}

// prune removes the oldest snapshots beyond keep. Names sort chronologically.
func (w *SnapshotWorker) prune() error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, snapshotPrefix) && strings.HasSuffix(name, snapshotSuffix) {
			names = append(names, name)
		}
	}
	if len(names) <= w.keep {
		return nil
	}

	sort.Strings(names)
	for _, name := range names[:len(names)-w.keep] {
		if err := os.Remove(filepath.Join(w.dir, name)); err != nil {
			return err
		}
	}
	return nil
}
