package benchmark

import (
	"context"
	"fmt"
	"net"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
	"github.com/yndnr/respkv/pkg/resp"
)

// KeyCounts defines the keyspace sizes for full runs.
var KeyCounts = []int{10000, 100000, 500000, 1000000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000, 100000}

// ValueSizes defines the payload sizes in bytes.
var ValueSizes = []int{16, 256, 4096}

func newKey() string {
	return "key:" + strings.ToLower(ulid.Make().String())
}

// prefillStore fills store with count string keys holding size-byte values.
func prefillStore(store *memory.Store, count, size int) []string {
	value := make([]byte, size)
	keys := make([]string, count)
	for i := range keys {
		keys[i] = newKey()
		store.Set(keys[i], value, time.Time{})
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various keyspace sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}

// startServer runs a server on a loopback port for the rest of the benchmark.
func startServer(b *testing.B) (string, *memory.Store) {
	b.Helper()

	store := memory.New()
	cfg := redisserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := redisserver.New(cfg, redisserver.NewCommandHandler(store, nil, nil), nil, nil)
	if err := srv.Start(context.Background()); err != nil {
		b.Fatalf("Start failed: %v", err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String(), store
}

// conn is a minimal pipelining client.
type conn struct {
	c   net.Conn
	r   *resp.Reader
	out []byte
}

func dial(addr string) (*conn, error) {
	c, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &conn{c: c, r: resp.NewReader(c)}, nil
}

func (c *conn) Close() error {
	return c.c.Close()
}

// do sends depth copies of cmd in one write and reads every reply.
func (c *conn) do(cmd resp.Value, depth int) error {
	c.out = c.out[:0]
	for i := 0; i < depth; i++ {
		c.out = resp.AppendValue(c.out, cmd)
	}
	if _, err := c.c.Write(c.out); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	for i := 0; i < depth; i++ {
		v, err := c.r.ReadValue()
		if err != nil {
			return fmt.Errorf("read reply: %w", err)
		}
		if v.IsError() {
			return fmt.Errorf("error reply: %s", v.Data)
		}
	}
	return nil
}
