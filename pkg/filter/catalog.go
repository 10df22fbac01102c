package filter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrLayerNotFound is returned by StaticCatalog for unknown layers.
var ErrLayerNotFound = errors.New("layer not found")

// Column is a column of a layer table.
type Column struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// IsBoolean reports whether the declared type is a PostgreSQL boolean.
func (c Column) IsBoolean() bool {
	switch strings.ToLower(c.Type) {
	case "bool", "boolean":
		return true
	default:
		return false
	}
}

// Schema describes the table behind a layer.
type Schema struct {
	Layer           string   `json:"layer" yaml:"layer"`
	// Table is the quoted source table aggregates select from. The layer
	// name is used when empty.
	Table           string   `json:"table,omitempty" yaml:"table"`
	Columns         []Column `json:"columns" yaml:"columns"`
	IDColumn        string   `json:"idColumn,omitempty" yaml:"id_column"`
	GeometryColumns []string `json:"geometryColumns" yaml:"geometry_columns"`
	SRID            int      `json:"srid" yaml:"srid"`
	DegreeUnits     bool     `json:"degreeUnits" yaml:"degree_units"`
}

func (s *Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

func (s *Schema) IsGeometry(name string) bool {
	for _, g := range s.GeometryColumns {
		if g == name {
			return true
		}
	}
	return false
}

// Catalog answers schema questions about layers. Implementations may
// block on I/O.
type Catalog interface {
	DescribeLayer(ctx context.Context, layer string) (*Schema, error)
	// ColumnAt returns the name of the n-th column (1-based) of the layer.
	ColumnAt(ctx context.Context, layer string, n int) (string, error)
}

// StaticCatalog is an in-memory Catalog.
type StaticCatalog struct {
	mu     sync.RWMutex
	layers map[string]*Schema
}

func NewStaticCatalog(schemas ...*Schema) *StaticCatalog {
	c := &StaticCatalog{layers: make(map[string]*Schema, len(schemas))}
	for _, s := range schemas {
		c.layers[s.Layer] = s
	}
	return c
}

// Replace swaps the whole set of layers.
func (c *StaticCatalog) Replace(schemas ...*Schema) {
	layers := make(map[string]*Schema, len(schemas))
	for _, s := range schemas {
		layers[s.Layer] = s
	}

	c.mu.Lock()
	c.layers = layers
	c.mu.Unlock()
}

func (c *StaticCatalog) DescribeLayer(_ context.Context, layer string) (*Schema, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.layers[layer]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, layer)
	}
	return s, nil
}

func (c *StaticCatalog) ColumnAt(ctx context.Context, layer string, n int) (string, error) {
	s, err := c.DescribeLayer(ctx, layer)
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(s.Columns) {
		return "", fmt.Errorf("layer %s has no column at position %d", layer, n)
	}
	return s.Columns[n-1].Name, nil
}
