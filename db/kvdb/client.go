package kvdb

import (
	"context"
	"time"
)

type Client interface {
	Init() error
	Close() error
	GetConf() *Conf

	//---- Key Ops ----

	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, keys ...string) (int64, error)

	// ScanKeys iterates over keys matching pattern in batches.
	// It attempts to return up to scanBatchSize keys starting from the
	// given cursor; the cursor type is backend-specific and opaque to
	// callers. A nil nextCursor means the scan is complete.
	ScanKeys(ctx context.Context, pattern string, cursor any, scanBatchSize int) ([]string, any, error)

	//---- Single-value Ops ----

	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error) // val, found, err
}
