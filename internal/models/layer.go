package models

import (
	"time"

	"github.com/geowfs/wfs-gateway/pkg/filter"
)

// Column is one attribute of a layer table, in table order.
type Column struct {
	Name     string
	Type     string
	Geometry bool
}

// Layer is a feature type published by the gateway.
type Layer struct {
	Name         string
	Title        string
	SourceSchema string
	SourceTable  string
	IDColumn     string
	SRID         int
	DegreeUnits  bool
	Columns      []Column
	SyncedAt     time.Time
}

func (l *Layer) GeometryColumns() []string {
	var names []string
	for _, c := range l.Columns {
		if c.Geometry {
			names = append(names, c.Name)
		}
	}
	return names
}

// QualifiedTable returns the quoted schema.table of the source.
func (l *Layer) QualifiedTable() string {
	if l.SourceSchema == "" {
		return filter.QuoteIdentifier(l.SourceTable)
	}
	return filter.QuoteIdentifier(l.SourceSchema) + "." + filter.QuoteIdentifier(l.SourceTable)
}

// FilterSchema converts the layer to the schema the filter translator reads.
func (l *Layer) FilterSchema() *filter.Schema {
	columns := make([]filter.Column, 0, len(l.Columns))
	for _, c := range l.Columns {
		columns = append(columns, filter.Column{Name: c.Name, Type: c.Type})
	}
	return &filter.Schema{
		Layer:           l.Name,
		Table:           l.QualifiedTable(),
		Columns:         columns,
		IDColumn:        l.IDColumn,
		GeometryColumns: l.GeometryColumns(),
		SRID:            l.SRID,
		DegreeUnits:     l.DegreeUnits,
	}
}
