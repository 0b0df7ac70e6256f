package memory

import (
	"sync/atomic"
	"time"

	"github.com/yndnr/respkv/pkg/cmap"
)

// entry is a string value and its expiry. A zero expireAt never expires.
type entry struct {
	value    []byte
	expireAt time.Time
}

// expired reports whether the entry is expired at now. The expiry instant
// itself counts as expired.
func (e entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && !now.Before(e.expireAt)
}

// Store is the process-wide keyspace.
type Store struct {
	strings *cmap.Map[string, entry]
	lists   *cmap.Map[string, [][]byte]

	now    func() time.Time
	shards int

	// expiredTotal counts entries removed by lazy expiry.
	expiredTotal atomic.Uint64
}

// Option configures the Store.
type Option func(*Store)

// WithClock replaces time.Now, for deterministic expiry in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithShardCount sets the shard count of both namespaces.
// Values that are not a power of two fall back to cmap.DefaultShardCount.
func WithShardCount(n int) Option {
	return func(s *Store) {
		s.shards = n
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	s.strings = cmap.New[string, entry](s.shards)
	s.lists = cmap.New[string, [][]byte](s.shards)
	return s
}

// Now returns the store's current time. Callers computing expiry instants
// use it so that an injected clock applies to both sides.
func (s *Store) Now() time.Time {
	return s.now()
}

// Get returns a copy of the string value for key. An absent or expired key
// reports false; an expired entry is deleted by the read.
func (s *Store) Get(key string) ([]byte, bool) {
	e, ok := s.strings.Get(key)
	if !ok {
		return nil, false
	}

	now := s.now()
	if !e.expired(now) {
		return clone(e.value), true
	}

	// Recheck under the shard write lock: a concurrent Set may have
	// replaced the entry since it was read.
	s.strings.Compute(key, func(cur entry, loaded bool) (entry, cmap.ComputeOp) {
		if loaded && cur.expired(now) {
			s.expiredTotal.Add(1)
			return entry{}, cmap.DeleteOp
		}
		return cur, cmap.CancelOp
	})
	return nil, false
}

// Set stores value under key, replacing any previous value and expiry.
// A zero expireAt stores the value without expiry. The value is copied.
func (s *Store) Set(key string, value []byte, expireAt time.Time) {
	s.strings.Set(key, entry{value: clone(value), expireAt: expireAt})
}

// Exists reports whether key holds a live string value.
func (s *Store) Exists(key string) bool {
	_, ok := s.Get(key)
	return ok
}

// Len returns the number of string entries, including expired entries
// that no read has removed yet.
func (s *Store) Len() int {
	return s.strings.Len()
}

// Stats is a point-in-time summary of the store.
type Stats struct {
	Strings      int
	Lists        int
	ExpiredTotal uint64
}

// Stats returns the current store statistics.
func (s *Store) Stats() Stats {
	return Stats{
		Strings:      s.strings.Len(),
		Lists:        s.lists.Len(),
		ExpiredTotal: s.expiredTotal.Load(),
	}
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
