// Package fanout provides coordination for replicated writes and deletes.
// It handles parallel dispatch to replicas, per-replica timeout management,
// and independent outcome collection: one replica's failure never aborts
// the others.
package fanout
