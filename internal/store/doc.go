// Package store defines the capability a single cache node exposes to
// the router and provides memcached and redis backed implementations.
// All transport failures surface as error values the caller can record
// per node; a miss is a distinct, typed condition.
package store
