package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/geowfs/wfs-gateway/internal/models"
	"github.com/geowfs/wfs-gateway/internal/store"
	srvErrors "github.com/geowfs/wfs-gateway/pkg/errors"
	"github.com/geowfs/wfs-gateway/pkg/scheduler"
)

// SyncOptions selects what a sync introspects.
type SyncOptions struct {
	Schema string
	Tables []string
}

type CatalogService struct {
	scheduler *scheduler.Scheduler
	store     *store.Store
	source    FeatureSource
	opts      SyncOptions

	state models.SyncStatus
	mu    sync.Mutex

	done   chan any
	cancel context.CancelFunc
	logger *zap.SugaredLogger
}

// NewCatalogService creates the service. source may be nil when no
// feature database is configured; syncs then fail with SourceUnavailableError.
func NewCatalogService(s *scheduler.Scheduler, st *store.Store, source FeatureSource, opts SyncOptions) *CatalogService {
	return &CatalogService{
		scheduler: s,
		store:     st,
		source:    source,
		opts:      opts,
		state:     models.SyncStatus{State: models.SyncStateIdle},
		logger:    zap.S().Named("catalog_service"),
	}
}

func (c *CatalogService) List(ctx context.Context) ([]models.Layer, error) {
	return c.store.Layers().List(ctx)
}

func (c *CatalogService) Get(ctx context.Context, name string) (*models.Layer, error) {
	return c.store.Layers().Get(ctx, name)
}

// Import makes the catalog match the layers of a catalog file.
func (c *CatalogService) Import(ctx context.Context, layers []models.Layer) error {
	if err := c.store.Layers().Replace(ctx, layers); err != nil {
		return fmt.Errorf("import catalog: %w", err)
	}
	c.logger.Infow("catalog imported", "layers", len(layers))
	return nil
}

// Status returns the state of the running or last sync. Before any sync
// in this process it falls back to the recorded history.
func (c *CatalogService) Status(ctx context.Context) models.SyncStatus {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state.State != models.SyncStateIdle {
		return state
	}

	last, err := c.store.SyncHistory().Last(ctx)
	if err != nil {
		return state
	}
	return *last
}

// Start runs a sync in the background.
func (c *CatalogService) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.source == nil {
		return srvErrors.NewSourceUnavailableError(nil)
	}
	if c.state.State == models.SyncStateRunning {
		return srvErrors.NewSyncInProgressError()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan any)
	c.state = models.SyncStatus{State: models.SyncStateRunning}

	go c.run(runCtx, c.done)

	return nil
}

// Sync runs a sync and waits for it.
func (c *CatalogService) Sync(ctx context.Context) (models.SyncStatus, error) {
	if err := c.Start(ctx); err != nil {
		return models.SyncStatus{}, err
	}

	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		c.Stop()
		return models.SyncStatus{}, ctx.Err()
	case <-done:
	}

	status := c.Status(ctx)
	return status, status.Error
}

func (c *CatalogService) run(ctx context.Context, done chan any) {
	defer close(done)
	defer func() {
		c.mu.Lock()
		if c.done == done {
			c.cancel = nil
			c.done = nil
		}
		c.mu.Unlock()
	}()

	started := time.Now()
	future := c.scheduler.AddWork(func(ctx context.Context) (any, error) {
		layers, err := c.source.Introspect(ctx, c.opts.Schema, c.opts.Tables...)
		if err != nil {
			return nil, err
		}
		for i := range layers {
			if err := c.store.Layers().Save(ctx, &layers[i]); err != nil {
				return nil, err
			}
		}
		return len(layers), nil
	})

	var status models.SyncStatus
	select {
	case <-ctx.Done():
		future.Stop()
		status = models.SyncStatus{State: models.SyncStateError, Error: ctx.Err()}
	case result := <-future.C():
		if result.Err != nil {
			status = models.SyncStatus{State: models.SyncStateError, Error: result.Err}
		} else {
			status = models.SyncStatus{State: models.SyncStateDone, Layers: result.Data.(int)}
		}
	}
	status.FinishedAt = time.Now()

	if err := c.store.SyncHistory().Record(context.Background(), started, status); err != nil {
		c.logger.Warnw("failed to record sync", "error", err)
	}

	if status.Error != nil {
		c.logger.Errorw("catalog sync failed", "error", status.Error)
	} else {
		c.logger.Infow("catalog sync finished", "layers", status.Layers, "duration", status.FinishedAt.Sub(started))
	}

	c.mu.Lock()
	c.state = status
	c.mu.Unlock()
}

// Stop cancels a running sync and waits for it.
func (c *CatalogService) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if done != nil {
		<-done
	}
}
