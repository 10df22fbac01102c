package store

import (
	"context"
	"database/sql"
)

// Store provides access to all storage repositories.
type Store struct {
	db      *sql.DB
	layers  *LayerStore
	history *SyncHistoryStore
	catalog *Catalog
}

func NewStore(db *sql.DB) *Store {
	qi := newQueryInterceptor(db)
	layers := NewLayerStore(qi)
	return &Store{
		db:      db,
		layers:  layers,
		history: NewSyncHistoryStore(qi),
		catalog: NewCatalog(layers),
	}
}

func (s *Store) Layers() *LayerStore {
	return s.layers
}

func (s *Store) SyncHistory() *SyncHistoryStore {
	return s.history
}

// Catalog exposes the layer tables as a filter.Catalog.
func (s *Store) Catalog() *Catalog {
	return s.catalog
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
