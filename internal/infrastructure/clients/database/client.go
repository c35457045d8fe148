// Package database owns the shared *sql.DB for the trip store. SQLite is the
// default engine; PostgreSQL is selected with DB_DRIVER=postgres.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mr-jafner/TravelTogether-sub000/pkg/config"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/retry"
)

// Querier is satisfied by both *sql.DB and *sql.Tx
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Client represents a database client
type Client struct {
	db      *sql.DB
	driver  string
	dialect goqu.DialectWrapper
}

// NewClient opens the configured database, verifies the connection with
// exponential backoff and applies the schema.
func NewClient(ctx context.Context, cfg *config.DatabaseConfig) (*Client, error) {
	var (
		sqlDriver   string
		goquDialect string
	)
	switch cfg.Driver {
	case config.DriverSQLite:
		sqlDriver, goquDialect = "sqlite", "sqlite3"
	case config.DriverPostgres:
		sqlDriver, goquDialect = "postgres", "postgres"
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(sqlDriver, cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.Driver == config.DriverSQLite {
		// Single writer; WAL still allows readers on the same connection.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	err = retry.Do(ctx, retry.DefaultConfig(), cfg.Driver,
		func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			return db.PingContext(pingCtx)
		},
		func(attempt int, err error, nextDelay time.Duration) {
			log.Warn().
				Err(err).
				Str("driver", cfg.Driver).
				Int("attempt", attempt).
				Dur("next_delay", nextDelay).
				Msg("Database connection attempt failed, retrying")
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
	}

	c := &Client{
		db:      db,
		driver:  cfg.Driver,
		dialect: goqu.Dialect(goquDialect),
	}

	if err := c.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	log.Info().Str("driver", cfg.Driver).Msg("Successfully connected to database")
	return c, nil
}

func (c *Client) migrate(ctx context.Context) error {
	schema := sqliteSchema
	if c.driver == config.DriverPostgres {
		schema = postgresSchema
	}
	_, err := c.db.ExecContext(ctx, schema)
	return err
}

// DB returns the underlying database connection
func (c *Client) DB() *sql.DB {
	return c.db
}

// Driver returns the configured driver name
func (c *Client) Driver() string {
	return c.driver
}

// Dialect returns the goqu dialect matching the driver
func (c *Client) Dialect() goqu.DialectWrapper {
	return c.dialect
}

// Conn returns the transaction carried by ctx, or the database itself.
func (c *Client) Conn(ctx context.Context) Querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return c.db
}

// RunInTx runs fn inside a transaction that travels in the context passed to
// fn. The transaction is committed when fn returns nil and rolled back
// otherwise. Nested calls join the outer transaction.
func (c *Client) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error().Err(rbErr).Msg("Failed to roll back transaction")
			}
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// InsertID executes an insert and returns the generated id. The sqlite3
// dialect has no RETURNING support, so it falls back to LastInsertId.
func (c *Client) InsertID(ctx context.Context, ds *goqu.InsertDataset) (int64, error) {
	if c.driver == config.DriverPostgres {
		query, args, err := ds.Returning("id").ToSQL()
		if err != nil {
			return 0, fmt.Errorf("build insert: %w", err)
		}
		var id int64
		if err := c.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build insert: %w", err)
	}
	res, err := c.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// IsUniqueViolation reports whether err comes from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// Close closes the database connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Ping verifies the connection to the database
func (c *Client) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
