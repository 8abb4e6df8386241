package models

// Patches carry partial updates. A nil field was not supplied and leaves the stored value alone.

type ArtistPatch struct {
	Name    *string   `json:"name,omitempty"`
	Country *string   `json:"country,omitempty"`
	Genres  *[]string `json:"genres,omitempty"`
}

func (p ArtistPatch) IsEmpty() bool { return p.Name == nil && p.Country == nil && p.Genres == nil }

// Apply copies the supplied fields onto a.
func (p ArtistPatch) Apply(a *Artist) {
	if p.Name != nil {
		a.SetName(*p.Name)
	}
	if p.Country != nil {
		a.SetCountry(*p.Country)
	}
	if p.Genres != nil {
		a.SetGenres(*p.Genres)
	}
}

type AlbumPatch struct {
	Title  *string   `json:"title,omitempty"`
	Year   *int      `json:"year,omitempty"`
	Genre  *string   `json:"genre,omitempty"`
	Artist *string   `json:"artist,omitempty"`
	Songs  *[]string `json:"songs,omitempty"`
}

func (p AlbumPatch) IsEmpty() bool {
	return p.Title == nil && p.Year == nil && p.Genre == nil && p.Artist == nil && p.Songs == nil
}

func (p AlbumPatch) Apply(a *Album) {
	if p.Title != nil {
		a.SetTitle(*p.Title)
	}
	if p.Year != nil {
		a.SetYear(*p.Year)
	}
	if p.Genre != nil {
		a.SetGenre(*p.Genre)
	}
	if p.Artist != nil {
		a.SetArtist(*p.Artist)
	}
	if p.Songs != nil {
		a.SetSongs(*p.Songs)
	}
}

// SongPatch updates a song. An empty Album detaches the song from its album.
type SongPatch struct {
	Title    *string `json:"title,omitempty"`
	Artist   *string `json:"artist,omitempty"`
	Album    *string `json:"album,omitempty"`
	Duration *int    `json:"duration,omitempty"`
}

func (p SongPatch) IsEmpty() bool {
	return p.Title == nil && p.Artist == nil && p.Album == nil && p.Duration == nil
}

func (p SongPatch) Apply(s *Song) {
	if p.Title != nil {
		s.SetTitle(*p.Title)
	}
	if p.Artist != nil {
		s.SetArtist(*p.Artist)
	}
	if p.Album != nil {
		s.SetAlbum(*p.Album)
	}
	if p.Duration != nil {
		s.SetDuration(*p.Duration)
	}
}

type GenrePatch struct {
	Name   *string `json:"name,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

func (p GenrePatch) IsEmpty() bool { return p.Name == nil && p.Active == nil }

func (p GenrePatch) Apply(g *Genre) {
	if p.Name != nil {
		g.SetName(*p.Name)
	}
	if p.Active != nil {
		g.SetActive(*p.Active)
	}
}

type PlaylistPatch struct {
	Name  *string   `json:"name,omitempty"`
	Songs *[]string `json:"songs,omitempty"`
}

func (p PlaylistPatch) IsEmpty() bool { return p.Name == nil && p.Songs == nil }

func (p PlaylistPatch) Apply(pl *Playlist) {
	if p.Name != nil {
		pl.SetName(*p.Name)
	}
	if p.Songs != nil {
		pl.SetSongs(*p.Songs)
	}
}
