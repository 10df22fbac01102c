package postgis

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"

	"github.com/geowfs/wfs-gateway/internal/models"
	"github.com/geowfs/wfs-gateway/pkg/filter"
)

// Features runs q and decodes every row. Geometry columns are fetched as
// WKB and decoded; the first one becomes the feature geometry, any other
// stays in the properties.
func (s *Source) Features(ctx context.Context, q models.FeatureQuery) (*models.FeatureCollection, error) {
	query, args, err := selectQuery(q)
	if err != nil {
		return nil, err
	}
	s.logger.Debugw("query", "layer", q.Layer.Name, "query", query)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	columns := make([]string, 0, len(q.Layer.Columns))
	for _, c := range q.Layer.Columns {
		columns = append(columns, c.Name)
	}

	collection := &models.FeatureCollection{
		Layer:         q.Layer.Name,
		Columns:       columns,
		Features:      []models.Feature{},
		NumberMatched: -1,
	}

	primary := ""
	if geoms := q.Layer.GeometryColumns(); len(geoms) > 0 {
		primary = geoms[0]
	}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		f := models.Feature{Properties: make(map[string]any, len(values))}
		for i, c := range q.Layer.Columns {
			v := values[i]
			if c.Geometry {
				g, err := decodeGeometry(v)
				if err != nil {
					return nil, fmt.Errorf("column %s: %w", c.Name, err)
				}
				if c.Name == primary {
					f.Geometry = g
					continue
				}
				f.Properties[c.Name] = g
				continue
			}
			f.Properties[c.Name] = normalize(v)
		}
		if q.Layer.IDColumn != "" {
			f.ID = fmt.Sprintf("%s.%v", q.Layer.Name, f.Properties[q.Layer.IDColumn])
		}
		collection.Features = append(collection.Features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return collection, nil
}

// Count returns the number of rows matching q, ignoring paging.
func (s *Source) Count(ctx context.Context, q models.FeatureQuery) (int, error) {
	query, args, err := countQuery(q)
	if err != nil {
		return 0, err
	}
	s.logger.Debugw("query", "layer", q.Layer.Name, "query", query)

	var n int
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify(err)
	}
	return n, nil
}

func selectQuery(q models.FeatureQuery) (string, []any, error) {
	if q.Layer == nil || len(q.Layer.Columns) == 0 {
		return "", nil, fmt.Errorf("layer has no columns")
	}

	columns := make([]string, 0, len(q.Layer.Columns))
	for _, c := range q.Layer.Columns {
		name := escape(filter.QuoteIdentifier(c.Name))
		if c.Geometry {
			columns = append(columns, fmt.Sprintf("ST_AsBinary(%s) AS %s", name, name))
			continue
		}
		columns = append(columns, name)
	}

	builder := psql.Select(columns...).From(escape(q.Layer.QualifiedTable()))
	builder = where(builder, q.Where)
	if q.Layer.IDColumn != "" {
		builder = builder.OrderBy(escape(filter.QuoteIdentifier(q.Layer.IDColumn)))
	}
	if q.Limit > 0 {
		builder = builder.Limit(q.Limit)
	}
	if q.Offset > 0 {
		builder = builder.Offset(q.Offset)
	}

	return builder.ToSql()
}

func countQuery(q models.FeatureQuery) (string, []any, error) {
	if q.Layer == nil {
		return "", nil, fmt.Errorf("no layer")
	}
	builder := psql.Select("COUNT(*)").From(escape(q.Layer.QualifiedTable()))
	return where(builder, q.Where).ToSql()
}

// where appends a translated filter. The filter is complete SQL text, so
// any '?' in it must survive the Dollar placeholder rewrite.
func where(b sq.SelectBuilder, clause string) sq.SelectBuilder {
	if strings.TrimSpace(clause) == "" {
		return b
	}
	return b.Where(sq.Expr("(" + escape(clause) + ")"))
}

func escape(s string) string {
	return strings.ReplaceAll(s, "?", "??")
}

func decodeGeometry(v any) (orb.Geometry, error) {
	if v == nil {
		return nil, nil
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("expected WKB bytes, got %T", v)
	}
	g, err := wkb.Unmarshal(b)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// normalize maps pgx values onto JSON friendly Go values.
func normalize(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case [16]byte:
		return uuid.UUID(t).String()
	case []byte:
		return fmt.Sprintf(`\x%x`, t)
	case driver.Valuer:
		dv, err := t.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		return dv
	default:
		return v
	}
}
