package cmap

import (
	"math/rand/v2"
	"sync"

	"github.com/spaolacci/murmur3"
)

// DefaultShardCount is used when New is given zero or a count that is not
// a power of two.
const DefaultShardCount = 16

// Key is the constraint for map keys. Shard selection hashes the key bytes.
type Key interface {
	~string
}

// Map is a concurrent map split into independently locked shards.
type Map[K Key, V any] struct {
	shards []shard[K, V]
	mask   uint32
	seed   uint32
}

type shard[K Key, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

// New returns an empty Map with n shards.
func New[K Key, V any](n int) *Map[K, V] {
	if n <= 0 || n&(n-1) != 0 {
		n = DefaultShardCount
	}
	m := &Map[K, V]{
		shards: make([]shard[K, V], n),
		mask:   uint32(n - 1),
		seed:   rand.Uint32(),
	}
	for i := range m.shards {
		m.shards[i].items = make(map[K]V)
	}
	return m
}

func (m *Map[K, V]) shardFor(key K) *shard[K, V] {
	h := murmur3.Sum32WithSeed([]byte(key), m.seed)
	return &m.shards[h&m.mask]
}

// Shards returns the number of shards.
func (m *Map[K, V]) Shards() int {
	return len(m.shards)
}

// Get returns the value stored under key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	s := m.shardFor(key)
	s.mu.RLock()
	v, ok := s.items[key]
	s.mu.RUnlock()
	return v, ok
}

// Set stores value under key.
func (m *Map[K, V]) Set(key K, value V) {
	s := m.shardFor(key)
	s.mu.Lock()
	s.items[key] = value
	s.mu.Unlock()
}

// Len returns the number of keys. Shards are counted one at a time, so the
// total is not a snapshot under concurrent writes.
func (m *Map[K, V]) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.RLock()
		n += len(s.items)
		s.mu.RUnlock()
	}
	return n
}

// ComputeOp tells Compute what to do with the value returned by its callback.
type ComputeOp int

const (
	// UpdateOp stores the returned value.
	UpdateOp ComputeOp = iota
	// DeleteOp removes the key.
	DeleteOp
	// CancelOp leaves the map unchanged.
	CancelOp
)

// Compute runs fn on the current value of key under the shard's write lock
// and applies the returned op. It returns the value held afterwards and
// whether the key exists. fn must not call back into m.
func (m *Map[K, V]) Compute(key K, fn func(cur V, loaded bool) (V, ComputeOp)) (V, bool) {
	s := m.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, loaded := s.items[key]
	next, op := fn(cur, loaded)
	switch op {
	case UpdateOp:
		s.items[key] = next
		return next, true
	case DeleteOp:
		delete(s.items, key)
		var zero V
		return zero, false
	default:
		return cur, loaded
	}
}
