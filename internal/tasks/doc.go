// Package tasks runs long catalog operations with progress reporting.
//
// # Reconciliation
//
// [Reconciler] repairs back-reference drift left behind by failed paired writes. The forward
// references are authoritative, so every set is recomputed from them:
//
//   - Artist.albums from Album.artist
//   - Album.songs from Song.album
//   - User.playlists from Playlist.owner
//
// A dry run only reports the drift. A full run rewrites the drifted sets and resolves the
// pending entries of the paired-write journal.
//
// # Library Import
//
// [Importer] walks a directory of audio files, reads their tags with github.com/dhowden/tag
// in a worker pool throttled by a [rate.Limiter], and writes artists, albums and songs through
// the catalog services so every consistency rule applies. Catalog writes are serialized in the
// collecting goroutine; only file reads run concurrently.
//
// # Progress Reporting
//
// Operations accept an optional progress channel and send [ProgressUpdate] values on it
// without blocking. A full channel drops the update.
package tasks
