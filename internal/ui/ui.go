package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/discography/internal/formatter"
	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/services"
)

// fieldWidth aligns the statistics values in one column.
const fieldWidth = 20

// theme styles the catalog views. Colors adapt to light and dark terminals.
type theme struct {
	heading lipgloss.Style
	field   lipgloss.Style
	value   lipgloss.Style
	empty   lipgloss.Style
	failure lipgloss.Style
}

var styles = theme{
	heading: lipgloss.NewStyle().Bold(true).MarginBottom(1).
		Foreground(lipgloss.AdaptiveColor{Light: "#5A3FC0", Dark: "#B8A6FF"}),
	field: lipgloss.NewStyle().Width(fieldWidth).
		Foreground(lipgloss.AdaptiveColor{Light: "#4A4A4A", Dark: "#A8A8A8"}),
	value: lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#1B7F3B", Dark: "#5FD787"}),
	empty: lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#8A6D00", Dark: "#D7AF5F"}),
	failure: lipgloss.NewStyle().Bold(true).Padding(0, 1).
		Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#C0392B")),
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ArtistListView ViewState = iota
	AlbumListView
	SongListView
	StatsView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	svc      *services.Services
	view     ViewState
	previous ViewState
	width    int
	height   int
	artists  list.Model
	albums   list.Model
	songs    list.Model
	artist   *models.Artist
	album    *models.Album
	stats    *models.Statistics
	err      error
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model reading through svc.
func NewModel(ctx context.Context, svc *services.Services) *Model {
	return &Model{
		ctx:     ctx,
		svc:     svc,
		view:    ArtistListView,
		artists: newList(nil, "Artists"),
		albums:  newList(nil, "Albums"),
		songs:   newList(nil, "Songs"),
		help:    help.New(),
		keys:    newKeyMap(),
	}
}

func newList(items []list.Item, title string) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = title
	return l
}

// Init loads the artist list.
func (m *Model) Init() tea.Cmd {
	return m.fetchArtists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		for _, l := range []*list.Model{&m.artists, &m.albums, &m.songs} {
			l.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateList(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.err = nil

	switch msg.kind {
	case MsgArtistsFetched:
		artists := msg.data.([]*models.Artist)
		items := make([]list.Item, len(artists))
		for i, a := range artists {
			items[i] = artistItem{artist: a}
		}
		m.artists.SetItems(items)

	case MsgAlbumsFetched:
		view := msg.data.(*services.ArtistAlbums)
		items := make([]list.Item, len(view.Albums))
		for i, a := range view.Albums {
			items[i] = albumItem{album: a}
		}
		m.artist = view.Artist
		m.albums.SetItems(items)
		m.albums.Title = fmt.Sprintf("Albums by %s", view.Artist.Name())
		m.albums.ResetSelected()
		m.view = AlbumListView

	case MsgSongsFetched:
		data := msg.data.(struct {
			album *models.Album
			songs []*models.Song
		})
		items := make([]list.Item, len(data.songs))
		for i, s := range data.songs {
			items[i] = songItem{song: s}
		}
		m.album = data.album
		m.songs.SetItems(items)
		m.songs.Title = fmt.Sprintf("Songs on %s", data.album.Title())
		m.songs.ResetSelected()
		m.view = SongListView

	case MsgStatsFetched:
		m.stats = msg.data.(*models.Statistics)
		if m.view != StatsView {
			m.previous = m.view
		}
		m.view = StatsView
	}
	return m, nil
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering() {
		return m.updateList(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.stats):
		return m, m.fetchStats()
	case key.Matches(msg, m.keys.refresh):
		return m, m.refresh()
	case key.Matches(msg, m.keys.back):
		m.back()
		return m, nil
	case key.Matches(msg, m.keys.enter):
		return m, m.open()
	}

	return m.updateList(msg)
}

// filtering reports whether the active list is taking filter input.
func (m *Model) filtering() bool {
	l := m.activeList()
	return l != nil && l.FilterState() == list.Filtering
}

func (m *Model) activeList() *list.Model {
	switch m.view {
	case ArtistListView:
		return &m.artists
	case AlbumListView:
		return &m.albums
	case SongListView:
		return &m.songs
	}
	return nil
}

func (m *Model) back() {
	m.err = nil
	switch m.view {
	case AlbumListView:
		m.view = ArtistListView
	case SongListView:
		m.view = AlbumListView
	case StatsView:
		m.view = m.previous
	}
}

func (m *Model) open() tea.Cmd {
	switch m.view {
	case ArtistListView:
		if item, ok := m.artists.SelectedItem().(artistItem); ok {
			return m.fetchAlbums(item.artist.ID())
		}
	case AlbumListView:
		if item, ok := m.albums.SelectedItem().(albumItem); ok {
			return m.fetchSongs(item.album)
		}
	}
	return nil
}

func (m *Model) refresh() tea.Cmd {
	switch m.view {
	case AlbumListView:
		if m.artist != nil {
			return m.fetchAlbums(m.artist.ID())
		}
	case SongListView:
		if m.album != nil {
			return m.fetchSongs(m.album)
		}
	case StatsView:
		return m.fetchStats()
	}
	return m.fetchArtists()
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	l := m.activeList()
	if l == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*l, cmd = l.Update(msg)
	return m, cmd
}

func (m *Model) fetchArtists() tea.Cmd {
	return func() tea.Msg {
		artists, err := m.svc.Artists.List(m.ctx, "")
		return artistsFetchedMsg(artists, err)
	}
}

func (m *Model) fetchAlbums(artistID string) tea.Cmd {
	return func() tea.Msg {
		view, err := m.svc.Artists.Albums(m.ctx, artistID)
		return albumsFetchedMsg(view, err)
	}
}

func (m *Model) fetchSongs(album *models.Album) tea.Cmd {
	return func() tea.Msg {
		songs, err := m.svc.Songs.List(m.ctx, services.SongFilter{Album: album.ID()})
		return songsFetchedMsg(album, songs, err)
	}
}

func (m *Model) fetchStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := m.svc.Stats.All(m.ctx)
		return statsFetchedMsg(stats, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	var body string
	switch m.view {
	case ArtistListView:
		body = m.renderList(&m.artists, m.keys.enter, m.keys.stats, m.keys.quit)
	case AlbumListView:
		body = m.renderList(&m.albums, m.keys.enter, m.keys.back, m.keys.stats, m.keys.quit)
	case SongListView:
		body = m.renderList(&m.songs, m.keys.back, m.keys.stats, m.keys.quit)
	case StatsView:
		body = m.renderStats()
	}

	if m.err != nil {
		body = styles.failure.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n" + body
	}
	return body
}

func (m *Model) renderList(l *list.Model, keys ...key.Binding) string {
	if len(l.Items()) == 0 {
		empty := styles.empty.Render(fmt.Sprintf("%s: nothing here yet", l.Title))
		return fmt.Sprintf("%s\n\n%s", empty, m.help.ShortHelpView(keys))
	}
	return fmt.Sprintf("%s\n\n%s", l.View(), m.help.ShortHelpView(keys))
}

func (m *Model) renderStats() string {
	stats := m.stats
	if stats == nil {
		stats = &models.Statistics{}
	}

	var b strings.Builder
	b.WriteString(styles.heading.Render("Catalog Statistics"))
	b.WriteString("\n")
	for _, line := range strings.Split(strings.TrimRight(string(formatter.StatisticsToText(stats)), "\n"), "\n") {
		label, value, found := strings.Cut(line, ":")
		if !found {
			b.WriteString(line + "\n")
			continue
		}
		b.WriteString(styles.field.Render(label+":") + styles.value.Render(strings.TrimSpace(value)) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.refresh, m.keys.quit}))
	return b.String()
}
