package cron

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type stubStore struct {
	values  map[string]string
	setNXOK bool
	deleted []string
}

func newStubStore() *stubStore {
	return &stubStore{values: map[string]string{}, setNXOK: true}
}

func (s *stubStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if !s.setNXOK {
		return false, nil
	}
	s.values[key] = value.(string)
	return true, nil
}

func (s *stubStore) Get(ctx context.Context, key string) (string, error) {
	value, ok := s.values[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *stubStore) Del(ctx context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	for _, key := range keys {
		delete(s.values, key)
	}
	return nil
}

func TestRedisLockAcquireAndRelease(t *testing.T) {
	store := newStubStore()
	lock, err := NewRedisLock(store, "tp:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locked, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !locked {
		t.Fatal("expected lock acquired")
	}
	if store.values["tp:lock:test"] == "" {
		t.Fatal("expected owner value stored under the lock key")
	}

	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 1 {
		t.Fatalf("expected one delete, got %d", len(store.deleted))
	}
}

func TestRedisLockAcquireContended(t *testing.T) {
	store := newStubStore()
	store.setNXOK = false
	lock, err := NewRedisLock(store, "tp:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	locked, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if locked {
		t.Fatal("expected acquire to fail while held elsewhere")
	}
}

func TestRedisLockReleaseKeepsForeignOwner(t *testing.T) {
	store := newStubStore()
	lock, err := NewRedisLock(store, "tp:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := lock.Acquire(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate the TTL lapsing and another instance taking over.
	store.values["tp:lock:test"] = "someone-else"
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatal("release must not delete a lock owned by another instance")
	}
}

func TestRedisLockReleaseWithoutAcquire(t *testing.T) {
	store := newStubStore()
	lock, err := NewRedisLock(store, "tp:lock:test", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatal("nothing to release before acquire")
	}
}
