package postgis

import (
	"context"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/geowfs/wfs-gateway/internal/models"
	"github.com/geowfs/wfs-gateway/pkg/filter"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type geometryColumn struct {
	schema string
	table  string
	column string
	srid   int
}

// Introspect describes every table of schema registered in geometry_columns,
// or only the named tables. Layers are named after their table.
func (s *Source) Introspect(ctx context.Context, schema string, tables ...string) ([]models.Layer, error) {
	if schema == "" {
		schema = "public"
	}

	geoms, err := s.geometryColumns(ctx, schema, tables)
	if err != nil {
		return nil, err
	}

	// geometry_columns has one row per geometry column; group by table
	// keeping the first seen order.
	var order []string
	byTable := make(map[string][]geometryColumn)
	for _, g := range geoms {
		if _, ok := byTable[g.table]; !ok {
			order = append(order, g.table)
		}
		byTable[g.table] = append(byTable[g.table], g)
	}

	if missing := missingTables(tables, byTable); len(missing) > 0 {
		return nil, fmt.Errorf("tables without geometry in schema %s: %s", schema, strings.Join(missing, ", "))
	}

	layers := make([]models.Layer, 0, len(order))
	for _, table := range order {
		layer, err := s.describe(ctx, schema, table, byTable[table])
		if err != nil {
			return nil, fmt.Errorf("describe %s.%s: %w", schema, table, err)
		}
		layers = append(layers, *layer)
	}

	s.logger.Infow("introspected postgis schema", "schema", schema, "layers", len(layers))
	return layers, nil
}

func (s *Source) geometryColumns(ctx context.Context, schema string, tables []string) ([]geometryColumn, error) {
	builder := psql.Select("f_table_schema", "f_table_name", "f_geometry_column", "srid").
		From("geometry_columns").
		Where(sq.Eq{"f_table_schema": schema}).
		OrderBy("f_table_name", "f_geometry_column")
	if len(tables) > 0 {
		builder = builder.Where(sq.Eq{"f_table_name": tables})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("query", "query", query, "args", args)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var result []geometryColumn
	for rows.Next() {
		var g geometryColumn
		if err := rows.Scan(&g.schema, &g.table, &g.column, &g.srid); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

func (s *Source) describe(ctx context.Context, schema, table string, geoms []geometryColumn) (*models.Layer, error) {
	layer := &models.Layer{
		Name:         table,
		SourceSchema: schema,
		SourceTable:  table,
		SRID:         geoms[0].srid,
	}

	isGeometry := make(map[string]bool, len(geoms))
	for _, g := range geoms {
		isGeometry[g.column] = true
	}

	query, args, err := psql.Select("column_name", "udt_name").
		From("information_schema.columns").
		Where(sq.Eq{"table_schema": schema, "table_name": table}).
		OrderBy("ordinal_position").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Column
		if err := rows.Scan(&c.Name, &c.Type); err != nil {
			return nil, err
		}
		c.Geometry = isGeometry[c.Name]
		layer.Columns = append(layer.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if layer.IDColumn, err = s.primaryKey(ctx, schema, table); err != nil {
		return nil, err
	}
	if layer.DegreeUnits, err = s.degreeUnits(ctx, layer.SRID); err != nil {
		return nil, err
	}

	return layer, nil
}

// primaryKey returns the single-column primary key of the table, or "".
func (s *Source) primaryKey(ctx context.Context, schema, table string) (string, error) {
	regclass := filter.QuoteIdentifier(schema) + "." + filter.QuoteIdentifier(table)
	query, args, err := psql.Select("a.attname").
		From("pg_index i").
		Join("pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = ANY(i.indkey)").
		Where("i.indrelid = ?::regclass", regclass).
		Where("i.indisprimary").
		ToSql()
	if err != nil {
		return "", err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return "", classify(err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return "", err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	if len(keys) != 1 {
		return "", nil
	}
	return keys[0], nil
}

// degreeUnits reports whether the srid is a geographic (lon/lat) system.
func (s *Source) degreeUnits(ctx context.Context, srid int) (bool, error) {
	query, args, err := psql.Select("COALESCE(proj4text, '')").
		From("spatial_ref_sys").
		Where(sq.Eq{"srid": srid}).
		ToSql()
	if err != nil {
		return false, err
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return false, classify(err)
	}
	defer rows.Close()

	proj := ""
	if rows.Next() {
		if err := rows.Scan(&proj); err != nil {
			return false, err
		}
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	return isGeographic(proj), nil
}

func isGeographic(proj4 string) bool {
	return strings.Contains(proj4, "+proj=longlat") || strings.Contains(proj4, "+proj=latlong")
}

func missingTables(requested []string, found map[string][]geometryColumn) []string {
	var missing []string
	for _, t := range requested {
		if _, ok := found[t]; !ok {
			missing = append(missing, t)
		}
	}
	return missing
}
