// package formatter renders statistics, catalog listings and task reports as JSON, CSV, Markdown or plain text
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Formats lists the accepted format names.
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// ParseFormat normalizes a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", FormatText, "txt":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatMarkdown, "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("%w: format %q (expected one of %s)", shared.ErrInvalidFlag, name, strings.Join(Formats, ", "))
}

// ToJSON marshals v with two-space indentation and a trailing newline.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Statistics renders the four statistics views in format.
func Statistics(stats *models.Statistics, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(stats)
	case FormatCSV:
		return StatisticsToCSV(stats)
	case FormatMarkdown:
		return StatisticsToMarkdown(stats), nil
	default:
		return StatisticsToText(stats), nil
	}
}

// StatisticsToCSV writes one row per reported entity with columns: View, ID, Name, Count
func StatisticsToCSV(stats *models.Statistics) ([]byte, error) {
	rows := [][]string{{"View", "ID", "Name", "Count"}}
	if stats.MostAlbums != nil {
		rows = append(rows, []string{"most_albums", stats.MostAlbums.ArtistID, stats.MostAlbums.Name, strconv.Itoa(stats.MostAlbums.AlbumCount)})
	}
	for _, a := range stats.LeastAlbums {
		rows = append(rows, []string{"least_albums", a.ArtistID, a.Name, strconv.Itoa(a.AlbumCount)})
	}
	if stats.MostSongs != nil {
		rows = append(rows, []string{"most_songs", stats.MostSongs.AlbumID, stats.MostSongs.Title, strconv.Itoa(stats.MostSongs.SongCount)})
	}
	if stats.LeastSongs != nil {
		for _, title := range stats.LeastSongs.Albums {
			rows = append(rows, []string{"least_songs", "", title, strconv.Itoa(stats.LeastSongs.SongCount)})
		}
	}
	return writeCSV(rows)
}

// StatisticsToMarkdown renders each view as its own section.
func StatisticsToMarkdown(stats *models.Statistics) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Catalog Statistics\n\n")

	buf.WriteString("## Artist with the most albums\n\n")
	if stats.MostAlbums != nil {
		fmt.Fprintf(&buf, "**%s** (%d albums)\n\n", stats.MostAlbums.Name, stats.MostAlbums.AlbumCount)
	} else {
		buf.WriteString("_No artists._\n\n")
	}

	buf.WriteString("## Artists with the fewest albums\n\n")
	if len(stats.LeastAlbums) > 0 {
		buf.WriteString("| Artist | Albums |\n|---|---|\n")
		for _, a := range stats.LeastAlbums {
			fmt.Fprintf(&buf, "| %s | %d |\n", a.Name, a.AlbumCount)
		}
		buf.WriteString("\n")
	} else {
		buf.WriteString("_No artists._\n\n")
	}

	buf.WriteString("## Album with the most songs\n\n")
	if stats.MostSongs != nil {
		fmt.Fprintf(&buf, "**%s** (%d songs)\n\n", stats.MostSongs.Title, stats.MostSongs.SongCount)
	} else {
		buf.WriteString("_No albums._\n\n")
	}

	buf.WriteString("## Albums with the fewest songs\n\n")
	if stats.LeastSongs != nil {
		fmt.Fprintf(&buf, "%d songs: %s\n", stats.LeastSongs.SongCount, strings.Join(stats.LeastSongs.Albums, ", "))
	} else {
		buf.WriteString("_No albums._\n")
	}

	return buf.Bytes()
}

// StatisticsToText renders the views as aligned plain text.
func StatisticsToText(stats *models.Statistics) []byte {
	var buf bytes.Buffer

	most := "-"
	if stats.MostAlbums != nil {
		most = fmt.Sprintf("%s (%d)", stats.MostAlbums.Name, stats.MostAlbums.AlbumCount)
	}
	fmt.Fprintf(&buf, "Most albums:  %s\n", most)

	buf.WriteString("Least albums:")
	if len(stats.LeastAlbums) == 0 {
		buf.WriteString(" -")
	}
	buf.WriteString("\n")
	for i, a := range stats.LeastAlbums {
		fmt.Fprintf(&buf, "  %d. %s (%d)\n", i+1, a.Name, a.AlbumCount)
	}

	mostSongs := "-"
	if stats.MostSongs != nil {
		mostSongs = fmt.Sprintf("%s (%d)", stats.MostSongs.Title, stats.MostSongs.SongCount)
	}
	fmt.Fprintf(&buf, "Most songs:   %s\n", mostSongs)

	leastSongs := "-"
	if stats.LeastSongs != nil {
		leastSongs = fmt.Sprintf("%s (%d)", strings.Join(stats.LeastSongs.Albums, ", "), stats.LeastSongs.SongCount)
	}
	fmt.Fprintf(&buf, "Least songs:  %s\n", leastSongs)

	return buf.Bytes()
}

// Artists renders an artist listing with columns: ID, Name, Country, Genres, Albums
func Artists(artists []*models.Artist, format string) ([]byte, error) {
	header := []string{"ID", "Name", "Country", "Genres", "Albums"}
	rows := make([][]string, 0, len(artists))
	for _, a := range artists {
		rows = append(rows, []string{a.ID(), a.Name(), a.Country(), strings.Join(a.Genres(), ";"), strconv.Itoa(len(a.Albums()))})
	}
	return listing("Artists", artists, header, rows, format)
}

// Albums renders an album listing with columns: ID, Title, Year, Artist, Genre, Songs
func Albums(albums []*models.Album, format string) ([]byte, error) {
	header := []string{"ID", "Title", "Year", "Artist", "Genre", "Songs"}
	rows := make([][]string, 0, len(albums))
	for _, a := range albums {
		rows = append(rows, []string{a.ID(), a.Title(), strconv.Itoa(a.Year()), a.Artist(), a.Genre(), strconv.Itoa(len(a.Songs()))})
	}
	return listing("Albums", albums, header, rows, format)
}

// Songs renders a song listing with columns: ID, Title, Artist, Album, Duration
func Songs(songs []*models.Song, format string) ([]byte, error) {
	header := []string{"ID", "Title", "Artist", "Album", "Duration"}
	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, []string{s.ID(), s.Title(), s.Artist(), s.Album(), FormatDuration(s.Duration())})
	}
	return listing("Songs", songs, header, rows, format)
}

func listing(title string, v any, header []string, rows [][]string, format string) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(v)
	case FormatCSV:
		return writeCSV(append([][]string{header}, rows...))
	case FormatMarkdown:
		return markdownTable(title, header, rows), nil
	default:
		return textTable(header, rows), nil
	}
}

func markdownTable(title string, header []string, rows [][]string) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Total**: %d\n\n", len(rows))
	if len(rows) == 0 {
		return buf.Bytes()
	}

	buf.WriteString("| " + strings.Join(header, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat("---|", len(header)) + "\n")
	for _, row := range rows {
		escaped := make([]string, len(row))
		for i, cell := range row {
			escaped[i] = strings.ReplaceAll(cell, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(escaped, " | ") + " |\n")
	}
	return buf.Bytes()
}

func textTable(header []string, rows [][]string) []byte {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len([]rune(cell)))
		}
	}

	var buf bytes.Buffer
	line := func(cells []string) {
		for i, cell := range cells {
			if i == len(cells)-1 {
				buf.WriteString(cell)
				break
			}
			fmt.Fprintf(&buf, "%-*s  ", widths[i], cell)
		}
		buf.WriteString("\n")
	}
	line(header)
	for _, row := range rows {
		line(row)
	}
	return buf.Bytes()
}

func writeCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	for _, record := range rows {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// FormatDuration renders seconds as m:ss, or h:mm:ss past an hour.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0:00"
	}
	h, m, s := seconds/3600, seconds%3600/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// WriteFile writes rendered output to path, or to stdout when path is empty or "-".
func WriteFile(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
