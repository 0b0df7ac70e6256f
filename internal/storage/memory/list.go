package memory

import "github.com/yndnr/respkv/pkg/cmap"

// RPush appends values to the list at key in argument order, creating the
// list when absent, and returns the new length. Values are copied.
func (s *Store) RPush(key string, values ...[]byte) int {
	items := make([][]byte, len(values))
	for i, v := range values {
		items[i] = clone(v)
	}

	list, _ := s.lists.Compute(key, func(cur [][]byte, _ bool) ([][]byte, cmap.ComputeOp) {
		return append(cur, items...), cmap.UpdateOp
	})
	return len(list)
}

// LRange returns a copy of the list at key, or nil when absent.
func (s *Store) LRange(key string) [][]byte {
	list, ok := s.lists.Get(key)
	if !ok {
		return nil
	}

	out := make([][]byte, len(list))
	for i, v := range list {
		out[i] = clone(v)
	}
	return out
}

// ListLen returns the length of the list at key, 0 when absent.
func (s *Store) ListLen(key string) int {
	list, _ := s.lists.Get(key)
	return len(list)
}
