package throttle

import (
	"context"
	"testing"
	"time"
)

func TestAllowConsumesAndRefills(t *testing.T) {
	s := NewBucketStore[string](context.Background(), time.Hour, time.Hour)
	s.SetBucketGroup("batch", &BucketConf{Burst: 2, Increment: 1, Period: time.Minute})

	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// fresh bucket gets Burst tokens, first call consumes one
	if !s.Allow("batch", "10.0.0.1", now) {
		t.Fatal("first call should be allowed")
	}
	if !s.Allow("batch", "10.0.0.1", now) {
		t.Fatal("second call should be allowed")
	}
	if s.Allow("batch", "10.0.0.1", now) {
		t.Fatal("third call should be blocked")
	}

	// one period later a single token is back
	later := now.Add(time.Minute)
	if !s.Allow("batch", "10.0.0.1", later) {
		t.Fatal("call after refill should be allowed")
	}
	if s.Allow("batch", "10.0.0.1", later) {
		t.Fatal("second call after single refill should be blocked")
	}
}

func TestAllowIsolatesCallers(t *testing.T) {
	s := NewBucketStore[string](context.Background(), time.Hour, time.Hour)
	s.SetBucketGroup("batch", &BucketConf{Burst: 1, Increment: 1, Period: time.Minute})

	now := time.Now()
	if !s.Allow("batch", "10.0.0.1", now) {
		t.Fatal("caller A should be allowed")
	}
	if !s.Allow("batch", "10.0.0.2", now) {
		t.Fatal("caller B should be allowed independently")
	}
	if s.Allow("batch", "10.0.0.1", now) {
		t.Fatal("caller A should be blocked")
	}
}

func TestAllowUnknownGroupBlocked(t *testing.T) {
	s := NewBucketStore[string](context.Background(), time.Hour, time.Hour)
	if s.Allow("nope", "10.0.0.1", time.Now()) {
		t.Fatal("unknown group should always block")
	}
}

func TestCleanupDropsStaleBuckets(t *testing.T) {
	s := NewBucketStore[string](context.Background(), time.Hour, 10*time.Minute)
	s.SetBucketGroup("batch", &BucketConf{Burst: 1, Increment: 1, Period: time.Minute})

	now := time.Now()
	s.Allow("batch", "10.0.0.1", now)

	s.Cleanup(now.Add(5 * time.Minute))
	if _, ok := s.GetBucket("batch", "10.0.0.1"); !ok {
		t.Fatal("fresh bucket should survive cleanup")
	}

	s.Cleanup(now.Add(time.Hour))
	if _, ok := s.GetBucket("batch", "10.0.0.1"); ok {
		t.Fatal("stale bucket should be removed")
	}
}
