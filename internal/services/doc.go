// Package services implements the catalog's request-level operations.
//
// # Catalog Services
//
// [ArtistService], [AlbumService], [SongService], [GenreService] and [PlaylistService]
// accept decoded request input, build models and pass every mutation to
// [integrity.Engine], which validates references before writing and maintains the
// back-reference sets. List filters accept an id or, for artists and genres, a name;
// filters are resolved to canonical ids before querying.
//
// # Identity Bridge
//
// [AuthService] delegates credential checks to an [IdentityProvider]. [OAuthProvider]
// uses the OAuth2 password grant from [oauth2] followed by a userinfo request. Local users
// are mirrors keyed by the provider subject and never hold credentials.
//
// # Sessions
//
// [Sessions] issues HS256 tokens carrying the local user id, names, email, the active
// and admin flags and a capability list:
//   - catalog:write : create, update and delete artists, albums, songs and genres
//   - playlist:write : manage own playlists
//   - admin : reconciliation reports
//
// # Error Handling
//
// Errors wrap sentinels from the shared package so the HTTP layer can classify them:
//   - [shared.ErrInvalidCredentials] : provider rejected the credentials
//   - [shared.ErrIdentityProvider] : provider unreachable or returned garbage
//   - [shared.ErrAuthExpired], [shared.ErrAuthInvalid] : session token rejected
//   - [shared.ErrNothingToUpdate] : empty partial update
package services
