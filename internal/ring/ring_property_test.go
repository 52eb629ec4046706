package ring

import (
	"fmt"
	"testing"
)

// TestRing_Property_AddRemoveRestoresPoints tests that adding then
// removing a node leaves the point sequence exactly as it was.
func TestRing_Property_AddRemoveRestoresPoints(t *testing.T) {
	r := New(128)
	r.Add(Node{ID: "a", Addr: "127.0.0.1:11211"})
	r.Add(Node{ID: "b", Addr: "127.0.0.1:11212"})

	before := r.pointHashes()

	r.Add(Node{ID: "c", Addr: "127.0.0.1:11213"})
	r.Remove("c")

	after := r.pointHashes()
	if len(before) != len(after) {
		t.Fatalf("point count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("point %d changed: %d -> %d", i, before[i], after[i])
		}
	}
}

// TestRing_Property_ReplicaSetOfOneIsPrimary tests that with a
// replication factor of 1 the replica set is exactly the primary.
func TestRing_Property_ReplicaSetOfOneIsPrimary(t *testing.T) {
	r := New(128)
	for i := 0; i < 4; i++ {
		r.Add(Node{ID: fmt.Sprintf("n%d", i), Addr: fmt.Sprintf("127.0.0.1:1121%d", i)})
	}

	for i := 0; i < 200; i++ {
		key := fmt.Sprintf("key-%d", i)
		primary, ok := r.Primary(key)
		if !ok {
			t.Fatalf("no primary for %q", key)
		}
		set := r.ReplicaSet(key, 1)
		if len(set) != 1 {
			t.Fatalf("expected single replica for %q, got %d", key, len(set))
		}
		if set[0].ID != primary.ID {
			t.Fatalf("replica set of 1 disagrees with primary for %q: %s != %s", key, set[0].ID, primary.ID)
		}
	}
}

// TestRing_Property_FullReplicaSetCoversAllNodes tests that requesting
// at least as many replicas as members returns every member exactly once.
func TestRing_Property_FullReplicaSetCoversAllNodes(t *testing.T) {
	r := New(128)
	members := map[string]bool{}
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("n%d", i)
		r.Add(Node{ID: id, Addr: fmt.Sprintf("127.0.0.1:1121%d", i)})
		members[id] = true
	}

	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("key-%d", i)
		set := r.ReplicaSet(key, 10)
		if len(set) != len(members) {
			t.Fatalf("expected %d replicas for %q, got %d", len(members), key, len(set))
		}
		seen := make(map[string]bool)
		for _, n := range set {
			if seen[n.ID] {
				t.Fatalf("duplicate node %s in replica set for %q", n.ID, key)
			}
			if !members[n.ID] {
				t.Fatalf("unknown node %s in replica set for %q", n.ID, key)
			}
			seen[n.ID] = true
		}
	}

	// Same key always yields the same order.
	first := r.ReplicaSet("stable-key", 10)
	for i := 0; i < 10; i++ {
		again := r.ReplicaSet("stable-key", 10)
		for j := range first {
			if first[j].ID != again[j].ID {
				t.Fatalf("replica order changed on repeat lookup at %d", j)
			}
		}
	}
}

// TestRing_Property_MinimalDisruption tests that removing one node only
// reassigns keys that were owned by that node.
func TestRing_Property_MinimalDisruption(t *testing.T) {
	r := New(128)
	for i := 0; i < 4; i++ {
		r.Add(Node{ID: fmt.Sprintf("n%d", i), Addr: fmt.Sprintf("127.0.0.1:1121%d", i)})
	}

	numKeys := 2000
	before := make(map[string]string, numKeys)
	for i := 0; i < numKeys; i++ {
		key := fmt.Sprintf("key-%d", i)
		n, _ := r.Primary(key)
		before[key] = n.ID
	}

	r.Remove("n2")

	moved := 0
	for key, owner := range before {
		n, ok := r.Primary(key)
		if !ok {
			t.Fatalf("no primary for %q after remove", key)
		}
		if owner == "n2" {
			if n.ID == "n2" {
				t.Fatalf("key %q still owned by removed node", key)
			}
			continue
		}
		if n.ID != owner {
			moved++
		}
	}

	// Keys not owned by the removed node must keep their owner.
	if moved != 0 {
		t.Errorf("%d keys owned by surviving nodes were reassigned", moved)
	}
}

// TestRing_Property_Determinism tests that two rings built from the same
// membership agree on every owner.
func TestRing_Property_Determinism(t *testing.T) {
	build := func() *Ring {
		r := New(100)
		r.Add(Node{ID: "a", Addr: "10.0.0.1:11211"})
		r.Add(Node{ID: "b", Addr: "10.0.0.2:11211"})
		r.Add(Node{ID: "c", Addr: "10.0.0.3:11211"})
		return r
	}
	r1, r2 := build(), build()

	for i := 0; i < 500; i++ {
		key := fmt.Sprintf("user:%d", i)
		n1, ok1 := r1.Primary(key)
		n2, ok2 := r2.Primary(key)
		if ok1 != ok2 || n1.ID != n2.ID {
			t.Fatalf("rings disagree on %q: %s vs %s", key, n1.ID, n2.ID)
		}
	}
}
