// Package cache provides block caches for asset sources.
//
// Three implementations share the BlockCache interface:
//
//   - LRUBlockCache: a single size-bounded LRU charged against the
//     resource controller's memory budget
//   - ShardedLRUBlockCache: 64 LRU shards keyed by an xxhash of the key
//   - BadgerBlockCache: a persistent cache in a badger database, for remote
//     sources whose blocks are worth keeping across runs
//
// Cached slices are shared; callers must not modify them.
package cache
