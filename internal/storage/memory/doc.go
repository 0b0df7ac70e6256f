// Package memory provides the in-memory keyspaces behind respkv.
//
// A Store holds two independent namespaces:
//
//   - Strings: byte values with an optional absolute expiry instant
//   - Lists: ordered sequences of byte values, appended with RPush
//
// The same key may exist in both namespaces at once; they never interact.
//
// Expiry is lazy: an expired string is removed by the first read that
// observes it. There is no background sweep.
//
// Thread Safety:
//
// Each namespace is a sharded map (pkg/cmap). Readers never observe a
// partially written entry and writers on different shards do not contend.
// There is no atomicity across keys.
package memory
