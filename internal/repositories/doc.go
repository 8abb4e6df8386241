// Package repositories implements SQLite persistence for the catalog.
//
// Each repository implements the matching store interface from models, with soft deletes via
// deleted_at and per-table sequence counters ([NextSequence]) for stable list ordering.
//
// Back-reference sets are JSON arrays in a TEXT column. Set primitives (AddAlbum, RemoveSong, ...)
// read, change and write the column inside one transaction, giving the same per-document atomicity
// the document backend gets from $addToSet and $pull. No statement ever spans two entities.
//
// [NewCatalog] wires every repository into a [models.Catalog].
package repositories
