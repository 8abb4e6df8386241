package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/discography/internal/formatter"
	"github.com/desertthunder/discography/internal/models"
)

var (
	_ list.Item = artistItem{}
	_ list.Item = albumItem{}
	_ list.Item = songItem{}
)

// artistItem wraps [models.Artist] to implement [list.Item].
type artistItem struct {
	artist *models.Artist
}

func (i artistItem) FilterValue() string { return i.artist.Name() }
func (i artistItem) Title() string       { return i.artist.Name() }
func (i artistItem) Description() string {
	return fmt.Sprintf("%s • %d albums", i.artist.Country(), len(i.artist.Albums()))
}

// albumItem wraps [models.Album] to implement [list.Item].
type albumItem struct {
	album *models.Album
}

func (i albumItem) FilterValue() string { return i.album.Title() }
func (i albumItem) Title() string       { return i.album.Title() }
func (i albumItem) Description() string {
	desc := fmt.Sprintf("%d songs", len(i.album.Songs()))
	if i.album.Year() > 0 {
		desc = fmt.Sprintf("%d • %s", i.album.Year(), desc)
	}
	return desc
}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song *models.Song
}

func (i songItem) FilterValue() string { return i.song.Title() }
func (i songItem) Title() string       { return i.song.Title() }
func (i songItem) Description() string { return formatter.FormatDuration(i.song.Duration()) }
