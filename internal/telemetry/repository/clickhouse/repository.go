// Package clickhouse implements the telemetry cache store on ClickHouse.
package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE
//go:generate mockgen -destination=rows_mock_test.go -package=$GOPACKAGE github.com/ClickHouse/clickhouse-go/v2/lib/driver Rows

type (
	// Conn is the part of the ClickHouse connection used by the repository.
	Conn interface {
		Query(ctx context.Context, query string, args ...any) (driver.Rows, error)
		Exec(ctx context.Context, query string, args ...any) error
		Ping(ctx context.Context) error
		Close() error
	}
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)

// Repository persists blocks, epochs and sync checkpoints.
// Tables are ReplacingMergeTree, so reads go through FINAL.
type Repository struct {
	conn    Conn
	metrics Metrics
}

func NewRepository(dsn string, metrics Metrics) (*Repository, error) {
	if dsn == "" {
		return nil, errors.New("clickhouse dsn is required")
	}

	options, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse clickhouse dsn: %w", err)
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open clickhouse connection: %w", err)
	}

	return &Repository{conn: conn, metrics: metrics}, nil
}

// Ping verifies the connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.Ping(ctx)
}

func (r *Repository) Close() error {
	return r.conn.Close()
}

func closeRows(rows driver.Rows, err *error) {
	if closeErr := rows.Close(); closeErr != nil && *err == nil {
		*err = fmt.Errorf("close rows: %w", closeErr)
	}
}
