package main

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Road struct {
	ID    int
	Name  string
	Lanes int
	WKT   string
}

// DbReadWriter seeds the PostGIS tables the gateway serves.
type DbReadWriter struct {
	pool   *pgxpool.Pool
	psql   sq.StatementBuilderType
	schema string
}

func NewDbReadWriter(ctx context.Context, connString, schema string) (*DbReadWriter, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &DbReadWriter{
		pool:   pool,
		psql:   sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		schema: schema,
	}, nil
}

func (d *DbReadWriter) Close() {
	d.pool.Close()
}

// CreateRoads recreates the roads table in the test schema.
func (d *DbReadWriter) CreateRoads(ctx context.Context) error {
	stmts := []string{
		"CREATE EXTENSION IF NOT EXISTS postgis",
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", d.schema),
		fmt.Sprintf("DROP TABLE IF EXISTS %q.roads", d.schema),
		fmt.Sprintf(`CREATE TABLE %q.roads (
			gid integer PRIMARY KEY,
			name varchar(64),
			lanes integer,
			geom geometry(LineString, 4326)
		)`, d.schema),
	}
	for _, stmt := range stmts {
		if _, err := d.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", stmt, err)
		}
	}
	return nil
}

func (d *DbReadWriter) InsertRoads(ctx context.Context, roads ...Road) error {
	insert := d.psql.Insert(fmt.Sprintf("%q.roads", d.schema)).Columns("gid", "name", "lanes", "geom")
	for _, r := range roads {
		insert = insert.Values(r.ID, r.Name, r.Lanes, sq.Expr("ST_GeomFromText(?, 4326)", r.WKT))
	}

	query, args, err := insert.ToSql()
	if err != nil {
		return err
	}
	_, err = d.pool.Exec(ctx, query, args...)
	return err
}

func (d *DbReadWriter) DropSchema(ctx context.Context) error {
	_, err := d.pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %q CASCADE", d.schema))
	return err
}
