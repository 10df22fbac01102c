package services

import (
	"context"

	"github.com/geowfs/wfs-gateway/internal/models"
)

// FeatureSource is the database holding the layer tables.
type FeatureSource interface {
	Introspect(ctx context.Context, schema string, tables ...string) ([]models.Layer, error)
	Features(ctx context.Context, q models.FeatureQuery) (*models.FeatureCollection, error)
	Count(ctx context.Context, q models.FeatureQuery) (int, error)
}
