package models

import "time"

// SyncStateType represents the state of the catalog synchronisation.
type SyncStateType string

const (
	// SyncStateIdle - no sync has run yet
	SyncStateIdle SyncStateType = "idle"
	// SyncStateRunning - introspecting the feature database
	SyncStateRunning SyncStateType = "running"
	// SyncStateDone - last sync succeeded
	SyncStateDone SyncStateType = "done"
	// SyncStateError - last sync failed
	SyncStateError SyncStateType = "error"
)

// SyncStatus holds the catalog sync state and metadata.
type SyncStatus struct {
	State      SyncStateType
	Error      error
	Layers     int
	FinishedAt time.Time
}
