// Package client provides the replicating cache client. It resolves each
// key's replica set on the consistent hash ring, fans writes and deletes
// out across the set with per-node outcome tracking, and reads in strict
// priority order with first-hit-wins semantics.
package client
