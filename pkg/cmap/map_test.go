package cmap

import (
	"strconv"
	"sync"
	"testing"
)

// ============================================================
// Test: New
// ============================================================

func TestNew_Shards(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, DefaultShardCount},
		{-4, DefaultShardCount},
		{3, DefaultShardCount},
		{1, 1},
		{8, 8},
		{256, 256},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.n), func(t *testing.T) {
			if got := New[string, int](tt.n).Shards(); got != tt.want {
				t.Errorf("New(%d).Shards() = %d, want %d", tt.n, got, tt.want)
			}
		})
	}
}

// ============================================================
// Test: Get / Set / Len
// ============================================================

func TestMap_SetGet(t *testing.T) {
	m := New[string, string](4)

	if _, ok := m.Get("missing"); ok {
		t.Error("Get(missing) ok = true, want false")
	}

	m.Set("a", "1")
	m.Set("b", "2")
	m.Set("a", "3")

	if v, ok := m.Get("a"); !ok || v != "3" {
		t.Errorf("Get(a) = %q, %v, want 3, true", v, ok)
	}
	if n := m.Len(); n != 2 {
		t.Errorf("Len() = %d, want 2", n)
	}
}

type name string

func TestMap_StringKindKey(t *testing.T) {
	m := New[name, int](0)
	m.Set(name("x"), 1)
	if v, ok := m.Get("x"); !ok || v != 1 {
		t.Errorf("Get(x) = %d, %v, want 1, true", v, ok)
	}
}

func TestMap_ShardSpread(t *testing.T) {
	m := New[string, int](8)
	for i := range 1000 {
		m.Set("key-"+strconv.Itoa(i), i)
	}

	used := 0
	for i := range m.shards {
		if len(m.shards[i].items) > 0 {
			used++
		}
	}
	if used != 8 {
		t.Errorf("shards in use = %d, want 8", used)
	}
	if n := m.Len(); n != 1000 {
		t.Errorf("Len() = %d, want 1000", n)
	}
}

// ============================================================
// Test: Compute
// ============================================================

func TestMap_Compute(t *testing.T) {
	m := New[string, int](0)
	m.Set("k", 1)

	tests := []struct {
		name       string
		key        string
		fn         func(int, bool) (int, ComputeOp)
		wantVal    int
		wantOK     bool
		wantStored bool
	}{
		{
			name:       "update existing",
			key:        "k",
			fn:         func(cur int, _ bool) (int, ComputeOp) { return cur + 10, UpdateOp },
			wantVal:    11,
			wantOK:     true,
			wantStored: true,
		},
		{
			name:       "insert absent",
			key:        "new",
			fn:         func(int, bool) (int, ComputeOp) { return 7, UpdateOp },
			wantVal:    7,
			wantOK:     true,
			wantStored: true,
		},
		{
			name:       "cancel keeps value",
			key:        "k",
			fn:         func(int, bool) (int, ComputeOp) { return 99, CancelOp },
			wantVal:    11,
			wantOK:     true,
			wantStored: true,
		},
		{
			name:       "cancel on absent",
			key:        "ghost",
			fn:         func(int, bool) (int, ComputeOp) { return 1, CancelOp },
			wantVal:    0,
			wantOK:     false,
			wantStored: false,
		},
		{
			name:       "delete",
			key:        "k",
			fn:         func(int, bool) (int, ComputeOp) { return 0, DeleteOp },
			wantVal:    0,
			wantOK:     false,
			wantStored: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := m.Compute(tt.key, tt.fn)
			if v != tt.wantVal || ok != tt.wantOK {
				t.Errorf("Compute() = %d, %v, want %d, %v", v, ok, tt.wantVal, tt.wantOK)
			}
			if _, stored := m.Get(tt.key); stored != tt.wantStored {
				t.Errorf("stored = %v, want %v", stored, tt.wantStored)
			}
		})
	}
}

func TestMap_ConcurrentCompute(t *testing.T) {
	m := New[string, int](4)
	const workers, perWorker = 16, 500

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				m.Compute("counter", func(cur int, _ bool) (int, ComputeOp) {
					return cur + 1, UpdateOp
				})
			}
		}()
	}
	wg.Wait()

	if v, _ := m.Get("counter"); v != workers*perWorker {
		t.Errorf("counter = %d, want %d", v, workers*perWorker)
	}
}

func TestMap_ConcurrentAccess(t *testing.T) {
	m := New[string, int](8)

	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 200 {
				key := strconv.Itoa(w*1000 + i)
				m.Set(key, i)
				if v, ok := m.Get(key); !ok || v != i {
					t.Errorf("Get(%s) = %d, %v, want %d, true", key, v, ok, i)
				}
			}
		}()
	}
	wg.Wait()

	if n := m.Len(); n != 1600 {
		t.Errorf("Len() = %d, want 1600", n)
	}
}
