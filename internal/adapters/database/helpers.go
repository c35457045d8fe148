package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

// store holds what every adapter needs: the client for the connection (or the
// transaction in ctx) and a prepared-statement dialect.
type store struct {
	client *database.Client
}

func (s store) from(table interface{}) *goqu.SelectDataset {
	return s.client.Dialect().From(table).Prepared(true)
}

func (s store) insert(table string) *goqu.InsertDataset {
	return s.client.Dialect().Insert(table).Prepared(true)
}

func (s store) update(table string) *goqu.UpdateDataset {
	return s.client.Dialect().Update(table).Prepared(true)
}

func (s store) delete(table string) *goqu.DeleteDataset {
	return s.client.Dialect().Delete(table).Prepared(true)
}

func (s store) exec(ctx context.Context, b sqlBuilder) (sql.Result, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return s.client.Conn(ctx).ExecContext(ctx, query, args...)
}

func (s store) query(ctx context.Context, b sqlBuilder) (*sql.Rows, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return s.client.Conn(ctx).QueryContext(ctx, query, args...)
}

func (s store) queryRow(ctx context.Context, b sqlBuilder) (*sql.Row, error) {
	query, args, err := b.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return s.client.Conn(ctx).QueryRowContext(ctx, query, args...), nil
}

// deleteScoped removes the row id of table that belongs to tripID.
func (s store) deleteScoped(ctx context.Context, table string, tripID, id int64) (bool, error) {
	result, err := s.exec(ctx, s.delete(table).Where(goqu.Ex{"id": id, "trip_id": tripID}))
	if err != nil {
		return false, apperrors.NewInternalError("failed to delete from "+table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return n > 0, nil
}

// now is truncated to the stored precision so returned entities match what a
// later read produces.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	id := n.Int64
	return &id
}
