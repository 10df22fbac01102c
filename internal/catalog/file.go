// Package catalog reads layer definitions from a YAML file and watches it
// for changes.
package catalog

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.yaml.in/yaml/v3"

	"github.com/geowfs/wfs-gateway/internal/models"
)

// File is the document layout of a catalog file:
//
//	layers:
//	  - name: roads
//	    table: roads
//	    id_column: gid
//	    srid: 4326
//	    columns:
//	      - {name: gid, type: int4}
//	      - {name: geom, type: geometry, geometry: true}
type File struct {
	Layers []LayerEntry `yaml:"layers" validate:"dive"`
}

type LayerEntry struct {
	Name        string        `yaml:"name" validate:"required"`
	Title       string        `yaml:"title"`
	Schema      string        `yaml:"schema"`
	Table       string        `yaml:"table" validate:"required"`
	IDColumn    string        `yaml:"id_column"`
	SRID        int           `yaml:"srid" validate:"gte=0"`
	DegreeUnits bool          `yaml:"degree_units"`
	Columns     []ColumnEntry `yaml:"columns" validate:"required,min=1,dive"`
}

type ColumnEntry struct {
	Name     string `yaml:"name" validate:"required"`
	Type     string `yaml:"type" validate:"required"`
	Geometry bool   `yaml:"geometry"`
}

var validate = validator.New()

// Load reads and validates the catalog file at path.
func Load(path string) ([]models.Layer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog document. Unknown keys are rejected.
func Parse(data []byte) ([]models.Layer, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("cannot parse catalog file: %w", err)
	}

	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("invalid catalog file: %w", err)
	}

	seen := make(map[string]bool, len(f.Layers))
	layers := make([]models.Layer, 0, len(f.Layers))
	for _, e := range f.Layers {
		if seen[e.Name] {
			return nil, fmt.Errorf("invalid catalog file: layer %q defined twice", e.Name)
		}
		seen[e.Name] = true

		layer, err := e.toModel()
		if err != nil {
			return nil, fmt.Errorf("invalid catalog file: %w", err)
		}
		layers = append(layers, layer)
	}

	return layers, nil
}

func (e LayerEntry) toModel() (models.Layer, error) {
	layer := models.Layer{
		Name:         e.Name,
		Title:        e.Title,
		SourceSchema: e.Schema,
		SourceTable:  e.Table,
		IDColumn:     e.IDColumn,
		SRID:         e.SRID,
		DegreeUnits:  e.DegreeUnits,
		Columns:      make([]models.Column, 0, len(e.Columns)),
	}
	if layer.SRID == 0 {
		layer.SRID = 4326
	}

	idFound := e.IDColumn == ""
	for _, c := range e.Columns {
		layer.Columns = append(layer.Columns, models.Column{Name: c.Name, Type: c.Type, Geometry: c.Geometry})
		if c.Name == e.IDColumn {
			idFound = true
		}
	}
	if !idFound {
		return layer, fmt.Errorf("layer %q: id column %q is not a column", e.Name, e.IDColumn)
	}

	return layer, nil
}

// Marshal renders layers in the catalog file layout.
func Marshal(layers []models.Layer) ([]byte, error) {
	f := File{Layers: make([]LayerEntry, 0, len(layers))}
	for _, l := range layers {
		e := LayerEntry{
			Name:        l.Name,
			Title:       l.Title,
			Schema:      l.SourceSchema,
			Table:       l.SourceTable,
			IDColumn:    l.IDColumn,
			SRID:        l.SRID,
			DegreeUnits: l.DegreeUnits,
		}
		for _, c := range l.Columns {
			e.Columns = append(e.Columns, ColumnEntry{Name: c.Name, Type: c.Type, Geometry: c.Geometry})
		}
		f.Layers = append(f.Layers, e)
	}
	return yaml.Marshal(f)
}
