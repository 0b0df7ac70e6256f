// Package cmap provides the sharded concurrent map behind respkv's
// keyspaces.
//
// Keys are spread over a power-of-two number of shards by a seeded murmur3
// hash. Each shard is a plain map behind its own RWMutex, so operations on
// keys in different shards never contend. Compute gives read-modify-write
// atomicity for a single key.
//
//	m := cmap.New[string, []byte](0)
//	m.Set("key", []byte("value"))
//	v, ok := m.Get("key")
package cmap
