package handlers

import (
	"context"

	"github.com/geowfs/wfs-gateway/internal/models"
	"github.com/geowfs/wfs-gateway/internal/services"
)

type CatalogService interface {
	List(ctx context.Context) ([]models.Layer, error)
	Get(ctx context.Context, name string) (*models.Layer, error)
	Status(ctx context.Context) models.SyncStatus
	Start(ctx context.Context) error
}

type FeatureService interface {
	GetFeature(ctx context.Context, params services.GetFeatureParams) (*models.FeatureCollection, error)
	CompileFilter(ctx context.Context, layer string, document []byte) (string, error)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	catalogSrv CatalogService
	featureSrv FeatureService
	checks     map[string]HealthCheck
}

func New(catalogSrv CatalogService, featureSrv FeatureService, checks map[string]HealthCheck) *Handler {
	return &Handler{
		catalogSrv: catalogSrv,
		featureSrv: featureSrv,
		checks:     checks,
	}
}
