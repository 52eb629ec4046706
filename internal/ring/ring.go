package ring

import (
	"fmt"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Node represents a physical cache node on the ring.
type Node struct {
	ID   string
	Addr string
}

// point represents a virtual point a node occupies on the ring.
type point struct {
	hash   uint64
	nodeID string
}

// Ring implements consistent hashing with virtual points.
// Each member node occupies pointsPerNode positions in the 64-bit
// hash space so that membership changes remap only a small fraction
// of the keyspace.
type Ring struct {
	mu            sync.RWMutex
	pointsPerNode int
	points        []point
	nodes         map[string]Node // nodeID -> Node
}

// New creates an empty ring. pointsPerNode controls granularity:
// higher values smooth load distribution at the cost of more work
// per membership change.
func New(pointsPerNode int) *Ring {
	if pointsPerNode <= 0 {
		pointsPerNode = 128 // default
	}
	return &Ring{
		pointsPerNode: pointsPerNode,
		points:        make([]point, 0),
		nodes:         make(map[string]Node),
	}
}

// Add inserts a node and its virtual points. No-op if the node is
// already a member. If a point hashes onto a position already taken
// by another node the newer node wins that position; the space is
// wide enough that this is a non-event in practice.
func (r *Ring) Add(n Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[n.ID]; exists {
		return
	}

	r.nodes[n.ID] = n
	for i := 0; i < r.pointsPerNode; i++ {
		h := hashKey(fmt.Sprintf("%s:%d", n.ID, i))
		idx := sort.Search(len(r.points), func(j int) bool {
			return r.points[j].hash >= h
		})
		if idx < len(r.points) && r.points[idx].hash == h {
			r.points[idx].nodeID = n.ID
			continue
		}
		r.points = append(r.points[:idx], append([]point{{hash: h, nodeID: n.ID}}, r.points[idx:]...)...)
	}
}

// Remove deletes a node and all virtual points currently attributed
// to it. No-op if the node is not a member.
func (r *Ring) Remove(nodeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.nodes[nodeID]; !exists {
		return
	}

	delete(r.nodes, nodeID)
	kept := make([]point, 0, len(r.points))
	for _, p := range r.points {
		if p.nodeID != nodeID {
			kept = append(kept, p)
		}
	}
	r.points = kept
}

// Primary returns the node that owns the given key: the node at the
// first ring point strictly clockwise of the key's hash, wrapping at
// the top of the space. Returns (Node{}, false) on an empty ring.
func (r *Ring) Primary(key string) (Node, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.successor(key)
	if !ok {
		return Node{}, false
	}
	n, exists := r.nodes[r.points[idx].nodeID]
	return n, exists
}

// ReplicaSet returns up to n distinct nodes for the key in priority
// order, primary first. Starting at the primary's ring position it
// walks clockwise, skipping nodes already collected, until n nodes
// are found or every member has been seen. The result length is
// min(n, member count).
func (r *Ring) ReplicaSet(key string, n int) []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.successor(key)
	if !ok || n <= 0 {
		return []Node{}
	}

	seen := make(map[string]bool, n)
	result := make([]Node, 0, n)
	for i := 0; i < len(r.points) && len(result) < n; i++ {
		p := r.points[(idx+i)%len(r.points)]
		if seen[p.nodeID] {
			continue
		}
		seen[p.nodeID] = true
		if node, exists := r.nodes[p.nodeID]; exists {
			result = append(result, node)
		}
		if len(seen) == len(r.nodes) {
			break
		}
	}
	return result
}

// successor finds the index of the first point with hash strictly
// greater than the key's hash, wrapping to index 0 past the top.
// Callers must hold at least a read lock.
func (r *Ring) successor(key string) (int, bool) {
	if len(r.points) == 0 {
		return 0, false
	}
	h := hashKey(key)
	idx := sort.Search(len(r.points), func(i int) bool {
		return r.points[i].hash > h
	})
	if idx == len(r.points) {
		idx = 0
	}
	return idx, true
}

// Nodes returns all current members in unspecified order.
func (r *Ring) Nodes() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]Node, 0, len(r.nodes))
	for _, n := range r.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// Len returns the number of member nodes.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.nodes)
}

// pointHashes returns the current point positions in ring order.
// Used by tests to check membership changes leave no stray points.
func (r *Ring) pointHashes() []uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	hashes := make([]uint64, len(r.points))
	for i, p := range r.points {
		hashes[i] = p.hash
	}
	return hashes
}

// hashKey hashes keys and virtual points into the shared 64-bit space.
func hashKey(s string) uint64 {
	return xxhash.Sum64String(s)
}
