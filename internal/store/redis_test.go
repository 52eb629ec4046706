package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func newRedisStore(t *testing.T) (Store, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	s, err := DialRedis(srv.Addr(), time.Second)
	if err != nil {
		t.Fatalf("DialRedis: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, srv
}

func TestRedis_SetGetDelete(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "k1", []byte("v1"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v1" {
		t.Errorf("Get = %q, want %q", got, "v1")
	}

	if err := s.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "k1"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after delete = %v, want ErrCacheMiss", err)
	}
}

func TestRedis_GetMissing(t *testing.T) {
	s, _ := newRedisStore(t)

	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get missing = %v, want ErrCacheMiss", err)
	}
}

func TestRedis_SetWithTTL(t *testing.T) {
	s, srv := newRedisStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, "ephemeral", []byte("v"), 5*time.Second); err != nil {
		t.Fatalf("Set: %v", err)
	}

	srv.FastForward(6 * time.Second)

	if _, err := s.Get(ctx, "ephemeral"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get after TTL = %v, want ErrCacheMiss", err)
	}
}

func TestRedis_DeleteMissingIsNotError(t *testing.T) {
	s, _ := newRedisStore(t)
	if err := s.Delete(context.Background(), "never-set"); err != nil {
		t.Errorf("Delete missing = %v, want nil", err)
	}
}

func TestRedis_NodeDownSurfacesError(t *testing.T) {
	s, srv := newRedisStore(t)
	srv.Close()

	_, err := s.Get(context.Background(), "k")
	if err == nil || errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get against closed server = %v, want transport error", err)
	}
}
