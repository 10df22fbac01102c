package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/geowfs/wfs-gateway/internal/models"
	srvErrors "github.com/geowfs/wfs-gateway/pkg/errors"
)

// SyncHistoryStore records catalog synchronisation runs.
type SyncHistoryStore struct {
	db QueryInterceptor
}

func NewSyncHistoryStore(db QueryInterceptor) *SyncHistoryStore {
	return &SyncHistoryStore{db: db}
}

// Record stores a finished run.
func (s *SyncHistoryStore) Record(ctx context.Context, startedAt time.Time, status models.SyncStatus) error {
	msg := ""
	if status.Error != nil {
		msg = status.Error.Error()
	}

	query, args, err := sq.Insert("sync_history").
		Columns("started_at", "finished_at", "layers", "error").
		Values(startedAt, status.FinishedAt, status.Layers, msg).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Last returns the most recent run.
func (s *SyncHistoryStore) Last(ctx context.Context) (*models.SyncStatus, error) {
	query, args, err := sq.Select("finished_at", "layers", "error").
		From("sync_history").
		OrderBy("id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var status models.SyncStatus
	var msg string
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&status.FinishedAt, &status.Layers, &msg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewResourceNotFoundError("sync history")
	}
	if err != nil {
		return nil, err
	}

	status.State = models.SyncStateDone
	if msg != "" {
		status.State = models.SyncStateError
		status.Error = errors.New(msg)
	}
	return &status, nil
}
