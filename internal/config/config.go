package config

import (
	"fmt"
	"strings"
	"time"

	"distcached/internal/store"
)

// Supported node store backends.
const (
	BackendMemcached = "memcached"
	BackendRedis     = "redis"
)

// Defaults applied by Validate.
const (
	DefaultVNodes  = 128
	DefaultTimeout = 1 * time.Second
)

// Config holds the client configuration.
type Config struct {
	Addrs             []string
	Backend           string
	VNodes            int
	ReplicationFactor int
	Timeout           time.Duration
}

// ParseAddrs parses a comma-separated list of node addresses in the
// format "host:port,host:port,...".
func ParseAddrs(addrsStr string) ([]string, error) {
	if strings.TrimSpace(addrsStr) == "" {
		return nil, fmt.Errorf("at least one node address is required")
	}

	parts := strings.Split(addrsStr, ",")
	addrs := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		host, port, found := strings.Cut(part, ":")
		if !found || host == "" || port == "" {
			return nil, fmt.Errorf("invalid address %q (expected host:port)", part)
		}
		addrs = append(addrs, part)
	}

	if len(addrs) == 0 {
		return nil, fmt.Errorf("at least one node address is required")
	}
	return addrs, nil
}

// Validate checks the configuration and applies defaults and clamps:
// replication factor is clamped to at least 1, vnode density and
// timeout fall back to defaults when unset.
func (c *Config) Validate() error {
	if len(c.Addrs) == 0 {
		return fmt.Errorf("at least one node address is required")
	}
	if c.Backend == "" {
		c.Backend = BackendMemcached
	}
	if c.Backend != BackendMemcached && c.Backend != BackendRedis {
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.VNodes <= 0 {
		c.VNodes = DefaultVNodes
	}
	if c.ReplicationFactor < 1 {
		c.ReplicationFactor = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

// Dialer returns the store dialer for the configured backend.
func (c *Config) Dialer() (store.Dialer, error) {
	switch c.Backend {
	case BackendMemcached:
		return store.DialMemcached, nil
	case BackendRedis:
		return store.DialRedis, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}
