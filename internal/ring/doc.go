// Package ring implements a consistent hashing ring with virtual points.
// It maps keys to physical cache nodes while minimizing key movement when
// membership changes and supports selection of replica sets in priority
// order.
package ring
