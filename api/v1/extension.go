package v1

import (
	"github.com/geowfs/wfs-gateway/internal/models"
)

// NewLayer converts a catalog layer. Columns are included only in detail views.
func NewLayer(l models.Layer, withColumns bool) Layer {
	layer := Layer{
		Name:            l.Name,
		Title:           l.Title,
		Source:          l.QualifiedTable(),
		GeometryColumns: l.GeometryColumns(),
		Srid:            l.SRID,
		DegreeUnits:     l.DegreeUnits,
		SyncedAt:        l.SyncedAt,
	}
	if layer.GeometryColumns == nil {
		layer.GeometryColumns = []string{}
	}
	if l.IDColumn != "" {
		id := l.IDColumn
		layer.IdColumn = &id
	}
	if withColumns {
		layer.Columns = make([]Column, 0, len(l.Columns))
		for _, c := range l.Columns {
			layer.Columns = append(layer.Columns, Column{Name: c.Name, Type: c.Type, Geometry: c.Geometry})
		}
	}
	return layer
}

func NewLayerList(layers []models.Layer) LayerList {
	list := LayerList{Layers: make([]Layer, 0, len(layers)), Total: len(layers)}
	for _, l := range layers {
		list.Layers = append(list.Layers, NewLayer(l, false))
	}
	return list
}

func NewSyncStatus(status models.SyncStatus) SyncStatus {
	var s SyncStatus

	switch status.State {
	case models.SyncStateRunning:
		s.State = SyncStatusStateRunning
	case models.SyncStateDone:
		s.State = SyncStatusStateDone
	case models.SyncStateError:
		s.State = SyncStatusStateError
	default:
		s.State = SyncStatusStateIdle
	}

	s.Layers = status.Layers
	if !status.FinishedAt.IsZero() {
		t := status.FinishedAt
		s.FinishedAt = &t
	}
	if status.Error != nil {
		e := status.Error.Error()
		s.Error = &e
	}

	return s
}

func NewException(code, locator string, err error) Exception {
	e := Exception{Error: err.Error(), Code: code}
	if locator != "" {
		e.Locator = &locator
	}
	return e
}
