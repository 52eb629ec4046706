package fanout

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultPerReplicaTimeout bounds each replica call when the caller
	// does not supply a timeout.
	DefaultPerReplicaTimeout = 1 * time.Second
)

// Outcome is the result of one replica attempt.
type Outcome struct {
	OK  bool
	Err error
}

// Result maps node ID to the outcome of its attempt. Every replica
// handed to Do gets exactly one entry.
type Result map[string]Outcome

// AnyOK reports whether at least one replica succeeded.
func (r Result) AnyOK() bool {
	for _, o := range r {
		if o.OK {
			return true
		}
	}
	return false
}

// Succeeded returns the IDs of replicas whose attempt succeeded.
func (r Result) Succeeded() []string {
	ids := make([]string, 0, len(r))
	for id, o := range r {
		if o.OK {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReplicaFunc performs the operation against a single replica.
// A nil return is a success; any error is recorded for that replica.
type ReplicaFunc func(ctx context.Context, nodeID string) error

// Do fans the operation out to all replicas in parallel and collects
// one outcome per replica. Each call is bounded by timeout; a timeout
// or error on one replica never prevents the others from being
// attempted. Do returns once every replica has been attempted.
func Do(ctx context.Context, replicas []string, timeout time.Duration, fn ReplicaFunc) Result {
	result := make(Result, len(replicas))
	if len(replicas) == 0 {
		return result
	}
	if timeout <= 0 {
		timeout = DefaultPerReplicaTimeout
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, nodeID := range replicas {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			replicaCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			err := fn(replicaCtx, id)

			mu.Lock()
			defer mu.Unlock()
			result[id] = Outcome{OK: err == nil, Err: err}
		}(nodeID)
	}

	wg.Wait()
	return result
}
