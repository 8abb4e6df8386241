package models

// GroupCount is the number of live documents sharing one key.
type GroupCount struct {
	Key   string
	Count int
}

// AlbumSongCount is an album's song set size. A missing set counts as zero.
type AlbumSongCount struct {
	AlbumID   string
	Title     string
	SongCount int
}

// ArtistAlbumCount is one row of the artist statistics views.
type ArtistAlbumCount struct {
	ArtistID   string `json:"artist_id"`
	Name       string `json:"name"`
	AlbumCount int    `json:"albumCount"`
}

// AlbumSongsResult is the album with the most songs.
type AlbumSongsResult struct {
	AlbumID   string `json:"album_id"`
	Title     string `json:"title"`
	SongCount int    `json:"songCount"`
}

// LeastSongsResult groups every album tied at the minimum song count.
type LeastSongsResult struct {
	SongCount int      `json:"songCount"`
	Albums    []string `json:"albums"`
}

// Statistics holds all four derived views.
type Statistics struct {
	MostAlbums  *ArtistAlbumCount  `json:"most_albums,omitempty"`
	LeastAlbums []ArtistAlbumCount `json:"least_albums"`
	MostSongs   *AlbumSongsResult  `json:"most_songs,omitempty"`
	LeastSongs  *LeastSongsResult  `json:"least_songs,omitempty"`
}
