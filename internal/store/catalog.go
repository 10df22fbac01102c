package store

import (
	"context"
	"fmt"

	"github.com/geowfs/wfs-gateway/pkg/filter"
)

// Catalog answers filter schema lookups from the layer tables.
type Catalog struct {
	layers *LayerStore
}

func NewCatalog(layers *LayerStore) *Catalog {
	return &Catalog{layers: layers}
}

func (c *Catalog) DescribeLayer(ctx context.Context, layer string) (*filter.Schema, error) {
	l, err := c.layers.Get(ctx, layer)
	if err != nil {
		return nil, err
	}
	return l.FilterSchema(), nil
}

func (c *Catalog) ColumnAt(ctx context.Context, layer string, n int) (string, error) {
	l, err := c.layers.Get(ctx, layer)
	if err != nil {
		return "", err
	}
	if n < 1 || n > len(l.Columns) {
		return "", fmt.Errorf("layer %s has no column at position %d", layer, n)
	}
	return l.Columns[n-1].Name, nil
}
