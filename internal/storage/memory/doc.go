// Package memory provides the in-memory key-value store for linekv.
//
// The store is a plain map owned by a single goroutine, the server's event
// loop, so it carries no locks:
//
//   - Get: lookup by key
//   - Put: insert or overwrite unconditionally
//   - Len: number of keys
//
// Thread Safety:
//
// None. A caller that shares a Store between goroutines must shard it by
// key or guard it with a mutex.
package memory
