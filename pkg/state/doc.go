// Package state defines the persistence contract checkpoint adapters are built
// on. A Store loads, saves and removes one object at one path.
//
//   - FileStore[T] writes objects to disk through a codec.Codec (gob unless
//     configured otherwise). A missing file loads as ok=false and removing a
//     missing file succeeds.
//   - MemoryStore[T] keeps objects in memory and is meant for tests and
//     examples.
//
// Mutate runs a load-modify-save cycle against any Store.
package state
