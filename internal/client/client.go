package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"distcached/internal/fanout"
	"distcached/internal/ring"
	"distcached/internal/store"
)

// Options configures a Client.
type Options struct {
	// Addrs are the initial node addresses (host:port). A node's
	// address doubles as its ring identifier.
	Addrs []string
	// VNodes is the virtual point density per node.
	VNodes int
	// ReplicationFactor is how many distinct nodes each key is written
	// to and may be read from. Clamped to at least 1.
	ReplicationFactor int
	// Timeout bounds each per-node remote call.
	Timeout time.Duration
	// Dial connects to a node's store.
	Dial store.Dialer
}

// Client routes cache operations across a fleet of cache nodes using a
// consistent hash ring, replicating each key to ReplicationFactor nodes.
// Node failures are recorded per node and never abort an operation.
type Client struct {
	ring    *ring.Ring
	dial    store.Dialer
	rf      int
	timeout time.Duration

	mu     sync.RWMutex
	stores map[string]store.Store // nodeID -> handle
	keyMap map[string][]string    // key -> node IDs attempted on last Set
}

// New creates a Client and connects to every configured node. A node
// that cannot be dialed fails construction; once constructed, node
// failures are per-operation conditions.
func New(opts Options) (*Client, error) {
	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("client: at least one node address is required")
	}
	if opts.Dial == nil {
		return nil, fmt.Errorf("client: a store dialer is required")
	}
	rf := opts.ReplicationFactor
	if rf < 1 {
		rf = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = fanout.DefaultPerReplicaTimeout
	}

	c := &Client{
		ring:    ring.New(opts.VNodes),
		dial:    opts.Dial,
		rf:      rf,
		timeout: timeout,
		stores:  make(map[string]store.Store),
		keyMap:  make(map[string][]string),
	}
	for _, addr := range opts.Addrs {
		if err := c.AddNode(addr); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

// Set writes the key to every node in its replica set. Each node's
// outcome is recorded independently; success is true iff at least one
// node accepted the write. The full per-node outcome map is returned
// alongside. The attempted node set is recorded locally for
// DistributionStats, replacing any prior record for the key.
func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, fanout.Result) {
	ids := c.replicaIDs(key)

	result := fanout.Do(ctx, ids, c.timeout, func(ctx context.Context, nodeID string) error {
		st := c.storeFor(nodeID)
		if st == nil {
			return fmt.Errorf("no handle for node %s", nodeID)
		}
		return st.Set(ctx, key, value, ttl)
	})

	c.mu.Lock()
	c.keyMap[key] = ids
	c.mu.Unlock()

	return result.AnyOK(), result
}

// Get queries the key's replicas strictly in priority order and returns
// the first present value. A node that errors or times out counts as a
// miss and the walk continues. Returns (nil, false) when no replica
// holds the key, including on an empty ring. No recency check is made
// across replicas; the first one holding data wins.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	for _, n := range c.ring.ReplicaSet(key, c.rf) {
		st := c.storeFor(n.ID)
		if st == nil {
			continue
		}
		opCtx, cancel := context.WithTimeout(ctx, c.timeout)
		value, err := st.Get(opCtx, key)
		cancel()
		if err == nil {
			return value, true
		}
	}
	return nil, false
}

// Delete removes the key from every node in its replica set, recording
// each node's outcome independently. The local bookkeeping entry for
// the key is dropped regardless of per-node outcomes.
func (c *Client) Delete(ctx context.Context, key string) fanout.Result {
	ids := c.replicaIDs(key)

	result := fanout.Do(ctx, ids, c.timeout, func(ctx context.Context, nodeID string) error {
		st := c.storeFor(nodeID)
		if st == nil {
			return fmt.Errorf("no handle for node %s", nodeID)
		}
		return st.Delete(ctx, key)
	})

	c.mu.Lock()
	delete(c.keyMap, key)
	c.mu.Unlock()

	return result
}

// DistributionStats returns, per node ID, how many locally tracked keys
// list that node as a write target. It reflects only writes attempted
// through this client instance, not true node occupancy.
func (c *Client) DistributionStats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int)
	for _, nodeIDs := range c.keyMap {
		for _, id := range nodeIDs {
			counts[id]++
		}
	}
	return counts
}

// AddNode dials the node at addr and adds it to the ring. No-op if the
// node is already a member. Takes effect for all subsequent lookups;
// existing data is not migrated.
func (c *Client) AddNode(addr string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.stores[addr]; exists {
		return nil
	}
	st, err := c.dial(addr, c.timeout)
	if err != nil {
		return fmt.Errorf("client: dial node %s: %w", addr, err)
	}
	c.stores[addr] = st
	c.ring.Add(ring.Node{ID: addr, Addr: addr})
	return nil
}

// RemoveNode drops the node from the ring and closes its handle. No-op
// if the node is not a member. Keys already stored on the node become
// unreachable through the ring until handled externally.
func (c *Client) RemoveNode(addr string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, exists := c.stores[addr]
	if !exists {
		return
	}
	c.ring.Remove(addr)
	delete(c.stores, addr)
	st.Close()
}

// Nodes returns the addresses of the current ring members.
func (c *Client) Nodes() []string {
	nodes := c.ring.Nodes()
	addrs := make([]string, 0, len(nodes))
	for _, n := range nodes {
		addrs = append(addrs, n.Addr)
	}
	return addrs
}

// Close closes every node handle. The client must not be used after.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for addr, st := range c.stores {
		if err := st.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("client: close node %s: %w", addr, err)
		}
		delete(c.stores, addr)
	}
	return firstErr
}

// replicaIDs resolves the key's replica set as node IDs.
func (c *Client) replicaIDs(key string) []string {
	replicas := c.ring.ReplicaSet(key, c.rf)
	ids := make([]string, len(replicas))
	for i, n := range replicas {
		ids[i] = n.ID
	}
	return ids
}

// storeFor returns the handle for a node, or nil if the node has been
// removed since the replica set was resolved.
func (c *Client) storeFor(nodeID string) store.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stores[nodeID]
}
