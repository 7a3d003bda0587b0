package sqldb

import (
	"context"
)

// Row is the single-row scan surface shared by database/sql and pgx.
type Row interface {
	Scan(dest ...any) error
}

// Rows is the multi-row scan surface. Callers must Close.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

type Client interface {
	Init() error
	Close() error
	GetConf() *Conf
	GetDSN() string
	// Dialect names the SQL flavor ("mysql", "pgsql") so callers can pick
	// placeholder and upsert syntax.
	Dialect() string
	Ping(ctx context.Context) error
	Exec(ctx context.Context, query string, args ...any) error
	QueryRow(ctx context.Context, query string, args ...any) Row
	Query(ctx context.Context, query string, args ...any) (Rows, error)
}
