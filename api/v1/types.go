// Package v1 holds the JSON types of the /api/v1 REST endpoints and of the
// OWS exception body.
package v1

import "time"

type Column struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Geometry bool   `json:"geometry,omitempty"`
}

type Layer struct {
	Name            string    `json:"name"`
	Title           string    `json:"title,omitempty"`
	Source          string    `json:"source"`
	IdColumn        *string   `json:"idColumn,omitempty"`
	GeometryColumns []string  `json:"geometryColumns"`
	Srid            int       `json:"srid"`
	DegreeUnits     bool      `json:"degreeUnits"`
	Columns         []Column  `json:"columns,omitempty"`
	SyncedAt        time.Time `json:"syncedAt"`
}

type LayerList struct {
	Layers []Layer `json:"layers"`
	Total  int     `json:"total"`
}

type SyncStatusState string

const (
	SyncStatusStateIdle    SyncStatusState = "idle"
	SyncStatusStateRunning SyncStatusState = "running"
	SyncStatusStateDone    SyncStatusState = "done"
	SyncStatusStateError   SyncStatusState = "error"
)

type SyncStatus struct {
	State      SyncStatusState `json:"state"`
	Layers     int             `json:"layers"`
	FinishedAt *time.Time      `json:"finishedAt,omitempty"`
	Error      *string         `json:"error,omitempty"`
}

type CompileResponse struct {
	Layer string `json:"layer"`
	Sql   string `json:"sql"`
}

// Exception is the error body; Code is an OWS exception code.
type Exception struct {
	Error   string  `json:"error"`
	Code    string  `json:"code"`
	Locator *string `json:"locator,omitempty"`
}

// Health reports "ok" or the error of each dependency check.
type Health struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
