package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// Memcached is a Store backed by a single memcached server.
type Memcached struct {
	mc *memcache.Client
}

// DialMemcached returns a Store talking to the memcached server at addr.
// timeout bounds each socket operation, including connect.
func DialMemcached(addr string, timeout time.Duration) (Store, error) {
	if addr == "" {
		return nil, fmt.Errorf("memcached: empty address")
	}
	c := memcache.New(addr)
	c.Timeout = timeout
	return &Memcached{mc: c}, nil
}

func (m *Memcached) Get(_ context.Context, key string) ([]byte, error) {
	it, err := m.mc.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("memcached get %q: %w", key, err)
	}
	return it.Value, nil
}

func (m *Memcached) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := &memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	}
	if err := m.mc.Set(item); err != nil {
		return fmt.Errorf("memcached set %q: %w", key, err)
	}
	return nil
}

func (m *Memcached) Delete(_ context.Context, key string) error {
	err := m.mc.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil // already gone
	}
	if err != nil {
		return fmt.Errorf("memcached delete %q: %w", key, err)
	}
	return nil
}

// Close is a no-op: gomemcache pools connections internally and has no
// shutdown hook; sockets close with the process.
func (m *Memcached) Close() error {
	return nil
}
