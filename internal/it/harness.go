package it

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"distcached/internal/client"
	"distcached/internal/config"
)

// Fleet is a test fleet of in-process redis servers plus a distributed
// client routing across them.
type Fleet struct {
	mu      sync.Mutex
	servers map[string]*miniredis.Miniredis // addr -> server
	Client  *client.Client
}

// NewFleet starts n redis servers and a client with the given
// replication factor routing across all of them.
func NewFleet(t *testing.T, n, replicationFactor int) *Fleet {
	t.Helper()

	f := &Fleet{servers: make(map[string]*miniredis.Miniredis, n)}
	addrs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		srv := miniredis.RunT(t)
		f.servers[srv.Addr()] = srv
		addrs = append(addrs, srv.Addr())
	}

	cfg := &config.Config{
		Addrs:             addrs,
		Backend:           config.BackendRedis,
		VNodes:            100,
		ReplicationFactor: replicationFactor,
		Timeout:           500 * time.Millisecond,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}
	dial, err := cfg.Dialer()
	if err != nil {
		t.Fatalf("dialer: %v", err)
	}

	c, err := client.New(client.Options{
		Addrs:             cfg.Addrs,
		VNodes:            cfg.VNodes,
		ReplicationFactor: cfg.ReplicationFactor,
		Timeout:           cfg.Timeout,
		Dial:              dial,
	})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	t.Cleanup(func() { c.Close() })

	f.Client = c
	return f
}

// Kill stops the server at addr without removing it from the ring,
// simulating an unreachable node.
func (f *Fleet) Kill(addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	srv, ok := f.servers[addr]
	if !ok {
		return fmt.Errorf("no server at %s", addr)
	}
	srv.Close()
	return nil
}

// Restart brings a killed server back on its original address.
func (f *Fleet) Restart(addr string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	srv, ok := f.servers[addr]
	if !ok {
		return fmt.Errorf("no server at %s", addr)
	}
	return srv.Restart()
}

// Holding reports which fleet members currently hold the key.
func (f *Fleet) Holding(key string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var addrs []string
	for addr, srv := range f.servers {
		if srv.Exists(key) {
			addrs = append(addrs, addr)
		}
	}
	return addrs
}
