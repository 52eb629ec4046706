package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"distcached/internal/client"
	"distcached/internal/config"
	"distcached/internal/fanout"
)

func main() {
	var (
		hosts       = flag.String("hosts", "127.0.0.1:11211,127.0.0.1:11212", "comma-separated node addresses")
		backend     = flag.String("backend", config.BackendMemcached, "node store backend (memcached|redis)")
		replication = flag.Int("replication", 1, "replication factor")
		vnodes      = flag.Int("vnodes", 200, "virtual points per node")
		timeout     = flag.Duration("timeout", time.Second, "per-node operation timeout")
		bulk        = flag.Int("bulk", 0, "insert N generated keys and report distribution")
		setKey      = flag.String("set", "", "set a key (requires -value)")
		setValue    = flag.String("value", "", "value for -set")
		getKey      = flag.String("get", "", "get a key")
		delKey      = flag.String("del", "", "delete a key")
		show        = flag.Bool("show", false, "show distribution stats")
	)
	flag.Parse()

	addrs, err := config.ParseAddrs(*hosts)
	if err != nil {
		log.Fatalf("[distcached] %v", err)
	}
	cfg := &config.Config{
		Addrs:             addrs,
		Backend:           *backend,
		VNodes:            *vnodes,
		ReplicationFactor: *replication,
		Timeout:           *timeout,
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[distcached] %v", err)
	}
	dial, err := cfg.Dialer()
	if err != nil {
		log.Fatalf("[distcached] %v", err)
	}

	c, err := client.New(client.Options{
		Addrs:             cfg.Addrs,
		VNodes:            cfg.VNodes,
		ReplicationFactor: cfg.ReplicationFactor,
		Timeout:           cfg.Timeout,
		Dial:              dial,
	})
	if err != nil {
		log.Fatalf("[distcached] %v", err)
	}
	defer c.Close()

	log.Printf("[distcached] %d %s nodes, replication=%d, vnodes=%d",
		len(cfg.Addrs), cfg.Backend, cfg.ReplicationFactor, cfg.VNodes)

	ctx := context.Background()

	switch {
	case *bulk > 0:
		runBulk(ctx, c, *bulk)
	case *setKey != "":
		ok, result := c.Set(ctx, *setKey, []byte(*setValue), 0)
		fmt.Printf("SET %s => %s ok=%v\n", *setKey, *setValue, ok)
		printOutcomes(result)
	case *getKey != "":
		value, found := c.Get(ctx, *getKey)
		if !found {
			fmt.Printf("GET %s => (absent)\n", *getKey)
			return
		}
		fmt.Printf("GET %s => %s\n", *getKey, value)
	case *delKey != "":
		result := c.Delete(ctx, *delKey)
		fmt.Printf("DEL %s\n", *delKey)
		printOutcomes(result)
	case *show:
		printStats(c.DistributionStats())
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// runBulk inserts n generated keys and reports elapsed time plus the
// local write distribution. Each key's set is independent; a failed key
// does not stop the batch.
func runBulk(ctx context.Context, c *client.Client, n int) {
	start := time.Now()
	failed := 0
	for i := 0; i < n; i++ {
		key := fmt.Sprintf("key_%d", i)
		value := fmt.Sprintf("value_%d", i)
		if ok, _ := c.Set(ctx, key, []byte(value), 0); !ok {
			failed++
		}
	}
	elapsed := time.Since(start)

	fmt.Printf("Inserted %d keys in %.3fs (%d failed)\n", n, elapsed.Seconds(), failed)
	printStats(c.DistributionStats())
}

func printStats(stats map[string]int) {
	if len(stats) == 0 {
		fmt.Println("Distribution (local bookkeeping): empty")
		return
	}
	addrs := make([]string, 0, len(stats))
	for addr := range stats {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)

	fmt.Println("Distribution (local bookkeeping):")
	for _, addr := range addrs {
		fmt.Printf("  %s: %d keys\n", addr, stats[addr])
	}
}

func printOutcomes(result fanout.Result) {
	addrs := make([]string, 0, len(result))
	for addr := range result {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	for _, addr := range addrs {
		outcome := result[addr]
		if outcome.OK {
			fmt.Printf("  %s: ok\n", addr)
		} else {
			fmt.Printf("  %s: failed (%v)\n", addr, outcome.Err)
		}
	}
}
