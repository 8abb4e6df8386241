// Package models defines the catalog entities and the persistence interfaces the rest of discography depends on.
//
// Entities:
//   - [Artist] : name, country, genre references and the derived set of album ids
//   - [Album] : title, year, genre and artist references and the set of song ids
//   - [Song] : title, artist and optional album reference, duration in seconds
//   - [Genre] : case-insensitively unique name with an active flag
//   - [Playlist] : owner reference and an ordered set of song ids
//   - [User] : local mirror of an identity provider account and its playlist ids
//
// Forward references (Album.artist, Song.album, Playlist.owner) are authoritative.
// Back-reference sets (Artist.albums, Album.songs, User.playlists) are derived and only change
// through the store primitives (AddAlbum, RemoveSong, ...) so a full-document update can never
// overwrite a concurrent set change.
//
// All entities implement [Model]. Every store implements [Repository] plus the primitives the
// consistency engine needs; a [Catalog] bundles one backend's stores.
package models
