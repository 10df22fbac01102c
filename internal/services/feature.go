package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/geowfs/wfs-gateway/internal/models"
	"github.com/geowfs/wfs-gateway/internal/store"
	srvErrors "github.com/geowfs/wfs-gateway/pkg/errors"
	"github.com/geowfs/wfs-gateway/pkg/filter"
	"github.com/geowfs/wfs-gateway/pkg/filter/cql"
	"github.com/geowfs/wfs-gateway/pkg/scheduler"
)

const (
	ResultTypeResults = "results"
	ResultTypeHits    = "hits"
)

// GetFeatureParams are the GetFeature request parameters. At most one of
// Filter, CQLFilter, BBox and FeatureID may be set.
type GetFeatureParams struct {
	Layer       string
	Filter      string
	CQLFilter   string
	BBox        string
	FeatureID   string
	MaxFeatures uint64
	StartIndex  uint64
	ResultType  string
}

type FeatureService struct {
	scheduler   *scheduler.Scheduler
	store       *store.Store
	translator  *filter.Translator
	source      FeatureSource
	maxFeatures uint64
	logger      *zap.SugaredLogger
}

// NewFeatureService creates the service. maxFeatures caps every request;
// zero means no cap. source may be nil, in which case only Compile works.
func NewFeatureService(s *scheduler.Scheduler, st *store.Store, translator *filter.Translator, source FeatureSource, maxFeatures uint64) *FeatureService {
	return &FeatureService{
		scheduler:   s,
		store:       st,
		translator:  translator,
		source:      source,
		maxFeatures: maxFeatures,
		logger:      zap.S().Named("feature_service"),
	}
}

// Compile returns the WHERE expression of the request, or "" when it
// selects every feature.
func (f *FeatureService) Compile(ctx context.Context, params GetFeatureParams) (string, error) {
	if _, err := f.store.Layers().Get(ctx, params.Layer); err != nil {
		return "", err
	}
	return f.compile(ctx, params)
}

// CompileFilter translates a Filter XML document for one layer.
func (f *FeatureService) CompileFilter(ctx context.Context, layer string, document []byte) (string, error) {
	if _, err := f.store.Layers().Get(ctx, layer); err != nil {
		return "", err
	}
	return f.translator.TranslateXML(ctx, layer, document)
}

func (f *FeatureService) compile(ctx context.Context, params GetFeatureParams) (string, error) {
	set := make([]string, 0, 1)
	for name, value := range map[string]string{
		"FILTER":     params.Filter,
		"CQL_FILTER": params.CQLFilter,
		"BBOX":       params.BBox,
		"FEATUREID":  params.FeatureID,
	} {
		if strings.TrimSpace(value) != "" {
			set = append(set, name)
		}
	}
	if len(set) > 1 {
		return "", srvErrors.NewInvalidRequestError("", "FILTER, CQL_FILTER, BBOX and FEATUREID are mutually exclusive")
	}

	switch {
	case strings.TrimSpace(params.Filter) != "":
		return f.translator.TranslateXML(ctx, params.Layer, []byte(params.Filter))
	case strings.TrimSpace(params.CQLFilter) != "":
		root, err := cql.Parse([]byte(params.CQLFilter))
		if err != nil {
			return "", srvErrors.NewInvalidRequestError("CQL_FILTER", "%s", err)
		}
		return f.translator.Translate(ctx, params.Layer, root)
	case strings.TrimSpace(params.BBox) != "":
		return f.translator.TranslateEnvelope(ctx, params.Layer, params.BBox)
	case strings.TrimSpace(params.FeatureID) != "":
		return f.translator.TranslateFeatureIDs(ctx, params.Layer, params.FeatureID)
	default:
		return "", nil
	}
}

// GetFeature compiles the request and runs it on the feature source.
// With ResultType hits only the matching rows are counted.
func (f *FeatureService) GetFeature(ctx context.Context, params GetFeatureParams) (*models.FeatureCollection, error) {
	if f.source == nil {
		return nil, srvErrors.NewSourceUnavailableError(nil)
	}

	layer, err := f.store.Layers().Get(ctx, params.Layer)
	if err != nil {
		return nil, err
	}

	where, err := f.compile(ctx, params)
	if err != nil {
		return nil, err
	}

	q := models.FeatureQuery{
		Layer:  layer,
		Where:  where,
		Limit:  f.limit(params.MaxFeatures),
		Offset: params.StartIndex,
	}

	switch strings.ToLower(params.ResultType) {
	case "", ResultTypeResults:
		v, err := f.run(ctx, func(ctx context.Context) (any, error) {
			return f.source.Features(ctx, q)
		})
		if err != nil {
			return nil, err
		}
		return v.(*models.FeatureCollection), nil
	case ResultTypeHits:
		v, err := f.run(ctx, func(ctx context.Context) (any, error) {
			return f.source.Count(ctx, q)
		})
		if err != nil {
			return nil, err
		}
		return &models.FeatureCollection{
			Layer:         layer.Name,
			Features:      []models.Feature{},
			NumberMatched: v.(int),
		}, nil
	default:
		return nil, srvErrors.NewInvalidRequestError("RESULTTYPE", "unknown result type %q", params.ResultType)
	}
}

func (f *FeatureService) limit(requested uint64) uint64 {
	if f.maxFeatures == 0 {
		return requested
	}
	if requested == 0 || requested > f.maxFeatures {
		return f.maxFeatures
	}
	return requested
}

// run executes work on the query pool and gives up when ctx ends.
func (f *FeatureService) run(ctx context.Context, work scheduler.Work) (any, error) {
	future := f.scheduler.AddWork(work)
	select {
	case <-ctx.Done():
		future.Stop()
		return nil, ctx.Err()
	case result := <-future.C():
		return result.Data, result.Err
	}
}
