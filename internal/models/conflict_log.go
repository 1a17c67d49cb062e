package models

import "time"

// Conflict resolutions recorded in the journal.
const (
	ResolutionPending   = "pending"
	ResolutionKeepLocal = "keep_local"
	ResolutionUseServer = "use_server"
	ResolutionIgnored   = "ignored"
)

// ConflictLog records a detected concurrent edit and how it was resolved,
// for user awareness. It is an audit trail only; item state never round-trips
// through it.
type ConflictLog struct {
	ID              int64  `json:"id"`
	ItemID          int64  `json:"itemId"`
	BoardID         int64  `json:"boardId"`
	RemoteActor     string `json:"remoteActor"`
	RemoteTimestamp int64  `json:"remoteTimestamp"`
	Resolution      string `json:"resolution"`
	DetectedAt      int64  `json:"detectedAt"`
	ResolvedAt      int64  `json:"resolvedAt,omitempty"`
}

// DetectedAtTime returns DetectedAt as time.Time.
func (c *ConflictLog) DetectedAtTime() time.Time {
	return time.Unix(c.DetectedAt, 0)
}
