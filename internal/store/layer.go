package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/geowfs/wfs-gateway/internal/models"
	srvErrors "github.com/geowfs/wfs-gateway/pkg/errors"
)

const (
	layersTable  = "layers"
	columnsTable = "layer_columns"
)

var layerColumns = []string{
	"name",
	"title",
	"source_schema",
	"source_table",
	"id_column",
	"srid",
	"degree_units",
	"synced_at",
}

// LayerStore persists the layer catalog in DuckDB.
type LayerStore struct {
	db QueryInterceptor
}

func NewLayerStore(db QueryInterceptor) *LayerStore {
	return &LayerStore{db: db}
}

// ListOption modifies the SELECT on the layers table.
type ListOption func(sq.SelectBuilder) sq.SelectBuilder

// ByNames keeps the named layers only.
func ByNames(names ...string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if len(names) == 0 {
			return b
		}
		return b.Where(sq.Eq{"name": names})
	}
}

// BySourceSchema keeps layers backed by tables of one database schema.
func BySourceSchema(schema string) ListOption {
	return func(b sq.SelectBuilder) sq.SelectBuilder {
		if schema == "" {
			return b
		}
		return b.Where(sq.Eq{"source_schema": schema})
	}
}

// List returns the layers ordered by name, with their columns.
func (s *LayerStore) List(ctx context.Context, opts ...ListOption) ([]models.Layer, error) {
	builder := sq.Select(layerColumns...).From(layersTable).OrderBy("name")
	for _, opt := range opts {
		builder = opt(builder)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	layers := []models.Layer{}
	for rows.Next() {
		layer, err := scanLayer(rows)
		if err != nil {
			return nil, err
		}
		layers = append(layers, *layer)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(layers) == 0 {
		return layers, nil
	}

	names := make([]string, 0, len(layers))
	for _, l := range layers {
		names = append(names, l.Name)
	}
	columns, err := s.columns(ctx, names...)
	if err != nil {
		return nil, err
	}
	for i := range layers {
		layers[i].Columns = columns[layers[i].Name]
	}

	return layers, nil
}

// Get returns one layer or a ResourceNotFoundError.
func (s *LayerStore) Get(ctx context.Context, name string) (*models.Layer, error) {
	query, args, err := sq.Select(layerColumns...).
		From(layersTable).
		Where(sq.Eq{"name": name}).
		ToSql()
	if err != nil {
		return nil, err
	}

	layer, err := scanLayer(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewLayerNotFoundError(name)
	}
	if err != nil {
		return nil, err
	}

	columns, err := s.columns(ctx, name)
	if err != nil {
		return nil, err
	}
	layer.Columns = columns[name]

	return layer, nil
}

// Save inserts or replaces a layer and its columns.
func (s *LayerStore) Save(ctx context.Context, layer *models.Layer) error {
	if layer.Name == "" || layer.SourceTable == "" {
		return fmt.Errorf("layer name and source table are required")
	}

	return s.db.WithTx(ctx, func(tx QueryInterceptor) error {
		insert := sq.Insert(layersTable).
			Columns("name", "title", "source_schema", "source_table", "id_column", "srid", "degree_units").
			Values(layer.Name, layer.Title, sourceSchema(layer), layer.SourceTable, layer.IDColumn, layer.SRID, layer.DegreeUnits).
			Suffix(`ON CONFLICT (name) DO UPDATE SET
				title = EXCLUDED.title,
				source_schema = EXCLUDED.source_schema,
				source_table = EXCLUDED.source_table,
				id_column = EXCLUDED.id_column,
				srid = EXCLUDED.srid,
				degree_units = EXCLUDED.degree_units,
				synced_at = now()`)

		query, args, err := insert.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("saving layer %s: %w", layer.Name, err)
		}

		if err := deleteColumns(ctx, tx, layer.Name); err != nil {
			return err
		}

		if len(layer.Columns) == 0 {
			return nil
		}

		cols := sq.Insert(columnsTable).Columns("layer", "position", "name", "type", "is_geometry")
		for i, c := range layer.Columns {
			cols = cols.Values(layer.Name, i+1, c.Name, c.Type, c.Geometry)
		}
		query, args, err = cols.ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("saving columns of layer %s: %w", layer.Name, err)
		}
		return nil
	})
}

// Delete removes a layer or returns a ResourceNotFoundError.
func (s *LayerStore) Delete(ctx context.Context, name string) error {
	return s.db.WithTx(ctx, func(tx QueryInterceptor) error {
		query, args, err := sq.Delete(layersTable).Where(sq.Eq{"name": name}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return srvErrors.NewLayerNotFoundError(name)
		}
		return deleteColumns(ctx, tx, name)
	})
}

// Replace makes the catalog hold exactly the given layers.
func (s *LayerStore) Replace(ctx context.Context, layers []models.Layer) error {
	return s.db.WithTx(ctx, func(tx QueryInterceptor) error {
		keep := make([]string, 0, len(layers))
		for i := range layers {
			keep = append(keep, layers[i].Name)
		}

		for _, table := range []string{columnsTable, layersTable} {
			column := "name"
			if table == columnsTable {
				column = "layer"
			}
			del := sq.Delete(table)
			if len(keep) > 0 {
				del = del.Where(sq.NotEq{column: keep})
			}
			query, args, err := del.ToSql()
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return err
			}
		}

		store := NewLayerStore(tx)
		for i := range layers {
			if err := store.Save(ctx, &layers[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *LayerStore) columns(ctx context.Context, layers ...string) (map[string][]models.Column, error) {
	query, args, err := sq.Select("layer", "name", "type", "is_geometry").
		From(columnsTable).
		Where(sq.Eq{"layer": layers}).
		OrderBy("layer", "position").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string][]models.Column, len(layers))
	for rows.Next() {
		var layer string
		var c models.Column
		if err := rows.Scan(&layer, &c.Name, &c.Type, &c.Geometry); err != nil {
			return nil, err
		}
		columns[layer] = append(columns[layer], c)
	}
	return columns, rows.Err()
}

func deleteColumns(ctx context.Context, db QueryInterceptor, layer string) error {
	query, args, err := sq.Delete(columnsTable).Where(sq.Eq{"layer": layer}).ToSql()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, query, args...)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLayer(row scanner) (*models.Layer, error) {
	var l models.Layer
	err := row.Scan(
		&l.Name,
		&l.Title,
		&l.SourceSchema,
		&l.SourceTable,
		&l.IDColumn,
		&l.SRID,
		&l.DegreeUnits,
		&l.SyncedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func sourceSchema(l *models.Layer) string {
	if l.SourceSchema == "" {
		return "public"
	}
	return l.SourceSchema
}
