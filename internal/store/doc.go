// Package store provides SQLite-backed storage for objects and the ordered
// link lists between them.
//
// A Store is one session: it owns a single database connection and at most
// one write transaction at a time. Every structural change (creating or
// deleting objects, editing a list) must happen inside that transaction;
// reads work with or without one and observe the transaction's own writes.
//
// # Tables
//
//   - objects: id, object_type, canonical JSON payload, creation seq
//   - links: (owner_id, field, pos) -> target_id, pos dense from 0
//   - store_meta: the commit version and object sequence counters
//
// # Database Configuration
//
//   - WAL mode: concurrent readers from other processes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: links may only point at existing objects
//
// LinkView adapts one (owner, property) list to the list.Links interface.
// A LinkView is detached once its owner is deleted or the store is closed.
package store
