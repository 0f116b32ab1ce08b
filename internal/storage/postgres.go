package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"
)

// Open creates a bun database handle for the given DSN and verifies the
// connection.
func Open(dsn string, maxConnections int) (*bun.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	if maxConnections <= 0 {
		maxConnections = 10
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	sqldb.SetMaxOpenConns(maxConnections)
	sqldb.SetMaxIdleConns(maxConnections / 2)
	sqldb.SetConnMaxLifetime(time.Hour)

	db := bun.NewDB(sqldb, pgdialect.New())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Router pairs the primary database with an optional read replica. Writes and
// consistency-sensitive reads go to the primary; listing queries may go to the
// replica and must tolerate slightly stale data.
type Router struct {
	primary *bun.DB
	replica *bun.DB
}

// NewRouter creates a router over a primary connection and an optional
// replica DSN. A replica that cannot be reached is logged and dropped so the
// service keeps running on the primary alone.
func NewRouter(primary *bun.DB, replicaDSN string, maxConnections int, logger *zap.Logger) *Router {
	router := &Router{primary: primary}

	if replicaDSN == "" {
		return router
	}

	replica, err := Open(replicaDSN, maxConnections)
	if err != nil {
		logger.Warn("Read replica unavailable, falling back to primary", zap.Error(err))
		return router
	}

	router.replica = replica
	return router
}

// Primary returns the primary database handle
func (r *Router) Primary() *bun.DB {
	return r.primary
}

// Read returns the replica when one is configured, otherwise the primary
func (r *Router) Read() *bun.DB {
	if r.replica != nil {
		return r.replica
	}
	return r.primary
}

// Close closes both connections
func (r *Router) Close() error {
	if r.replica != nil {
		if err := r.replica.Close(); err != nil {
			return err
		}
	}
	return r.primary.Close()
}
