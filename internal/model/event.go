package model

import "time"

// Song event types
const (
	EventSongCreated = "song.created"
	EventSongUpdated = "song.updated"
	EventSongDeleted = "song.deleted"
	EventSongsReset  = "songs.reset"
)

// SongEvent describes a change to the setlist
type SongEvent struct {
	Type  string `json:"type"`
	Song  *Song  `json:"song,omitempty"`
	ID    string `json:"id,omitempty"`
	Count int    `json:"count,omitempty"`
}

// SnapshotPayload is the task payload for writing a setlist snapshot
type SnapshotPayload struct {
	Reason      string    `json:"reason"`
	RequestedAt time.Time `json:"requestedAt"`
}

// Snapshot is the document written by the snapshot worker
type Snapshot struct {
	TakenAt time.Time `json:"takenAt"`
	Reason  string    `json:"reason"`
	Songs   []Song    `json:"songs"`
}
