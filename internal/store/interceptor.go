package store

import (
	"context"
	"database/sql"

	"go.uber.org/zap"
)

// QueryInterceptor is the query surface the stores use. The default
// implementation traces every statement at debug level.
type QueryInterceptor interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	// WithTx runs fn inside a transaction; nested calls join the outer one.
	WithTx(ctx context.Context, fn func(tx QueryInterceptor) error) error
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryInterceptor struct {
	db     *sql.DB
	q      querier
	inTx   bool
	logger *zap.SugaredLogger
}

func newQueryInterceptor(db *sql.DB) *queryInterceptor {
	return &queryInterceptor{
		db:     db,
		q:      db,
		logger: zap.S().Named("store"),
	}
}

func (q *queryInterceptor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	q.logger.Debugw("query_row", "query", query, "args", args, "tx", q.inTx)
	return q.q.QueryRowContext(ctx, query, args...)
}

func (q *queryInterceptor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	q.logger.Debugw("query", "query", query, "args", args, "tx", q.inTx)
	return q.q.QueryContext(ctx, query, args...)
}

func (q *queryInterceptor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	q.logger.Debugw("exec", "query", query, "args", args, "tx", q.inTx)
	return q.q.ExecContext(ctx, query, args...)
}

func (q *queryInterceptor) WithTx(ctx context.Context, fn func(tx QueryInterceptor) error) error {
	if q.inTx {
		return fn(q)
	}

	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	q.logger.Debug("begin")

	if err := fn(&queryInterceptor{db: q.db, q: tx, inTx: true, logger: q.logger}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			q.logger.Warnw("rollback failed", "error", rbErr)
		}
		return err
	}

	q.logger.Debug("commit")
	return tx.Commit()
}
