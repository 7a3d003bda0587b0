package clientconf

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"sort"
	"strings"

	"github.com/zeptools/docforge/db/kvdb"
)

const kvKeyPrefix = "client:"

// KVStore keeps configurations in a key-value backend (redis) as JSON blobs
// under "client:<name>". Suited for multi-node deployments without a SQL db.
type KVStore struct {
	kv kvdb.Client
}

var _ Store = (*KVStore)(nil)

func NewKVStore(kv kvdb.Client) *KVStore {
	return &KVStore{kv: kv}
}

func (s *KVStore) Upsert(ctx context.Context, cfg *ClientConfiguration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("clientconf: encoding %q: %w", cfg.Name, err)
	}
	return s.kv.Set(ctx, kvKeyPrefix+cfg.Name, data, 0)
}

func (s *KVStore) Get(ctx context.Context, name string) (*ClientConfiguration, error) {
	val, found, err := s.kv.Get(ctx, kvKeyPrefix+name)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	var cfg ClientConfiguration
	if err := json.Unmarshal([]byte(val), &cfg); err != nil {
		return nil, fmt.Errorf("clientconf: decoding %q: %w", name, err)
	}
	return &cfg, nil
}

func (s *KVStore) Delete(ctx context.Context, name string) error {
	n, err := s.kv.Delete(ctx, kvKeyPrefix+name)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *KVStore) List(ctx context.Context) ([]string, error) {
	var (
		names  []string
		cursor any
	)
	for {
		keys, next, err := s.kv.ScanKeys(ctx, kvKeyPrefix+"*", cursor, 100)
		if err != nil {
			return nil, err
		}
		for _, k := range keys {
			names = append(names, strings.TrimPrefix(k, kvKeyPrefix))
		}
		if next == nil {
			break
		}
		cursor = next
	}
	sort.Strings(names)
	return names, nil
}

func (s *KVStore) Close() error {
	return s.kv.Close()
}
