package tasks

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dhowden/tag"
	"golang.org/x/time/rate"

	"github.com/desertthunder/discography/internal/services"
	"github.com/desertthunder/discography/internal/shared"
)

const (
	unknownArtist = "Unknown Artist"
	unknownAlbum  = "Unknown Album"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".m4b":  true,
	".m4p":  true,
	".mp4":  true,
	".flac": true,
	".ogg":  true,
	".dsf":  true,
}

// ImportOpts contains configuration for library imports.
type ImportOpts struct {
	NumWorkers int     // Concurrent tag readers (default: 4)
	RateLimit  float64 // Files opened per second (default: 50)
	Country    string  // Country given to artists created by the import (default: Unknown)
	Genre      string  // Genre for albums whose tags carry none (default: Unknown)
}

// ImportResult summarizes a library import.
type ImportResult struct {
	Root           string       `json:"root"`
	Files          int          `json:"files"`
	ArtistsCreated int          `json:"artists_created"`
	AlbumsCreated  int          `json:"albums_created"`
	SongsCreated   int          `json:"songs_created"`
	Skipped        int          `json:"skipped"`
	Failed         []FileResult `json:"failed,omitempty"`
}

// FileResult is the outcome for one file that could not be imported.
type FileResult struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// track is the catalog view of one audio file.
type track struct {
	Path   string
	Title  string
	Artist string
	Album  string
	Genre  string
	Year   int
}

// Importer loads tagged audio files into the catalog.
type Importer struct {
	svc    *services.Services
	opts   ImportOpts
	logger *log.Logger

	genres  map[string]bool
	artists map[string]bool
	albums  map[string]string
}

func NewImporter(svc *services.Services, opts ImportOpts, logger *log.Logger) *Importer {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 16 {
		opts.NumWorkers = 16
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 50
	}
	if opts.Country == "" {
		opts.Country = "Unknown"
	}
	if opts.Genre == "" {
		opts.Genre = "Unknown"
	}
	return &Importer{svc: svc, opts: opts, logger: logger}
}

// Run imports every audio file under root.
//
// Tags are read by a pool of workers; catalog writes happen one at a time in the calling
// goroutine so artists and albums shared by several files are created once.
func (i *Importer) Run(ctx context.Context, progress chan<- ProgressUpdate, root string) (*ImportResult, error) {
	paths, err := scanAudioFiles(root)
	if err != nil {
		return nil, err
	}
	sendProgress(progress, scanFilesUpdate(len(paths), root))

	i.genres = map[string]bool{}
	i.artists = map[string]bool{}
	i.albums = map[string]string{}
	result := &ImportResult{Root: root, Files: len(paths)}

	limiter := rate.NewLimiter(rate.Limit(i.opts.RateLimit), 1)
	jobs := make(chan string, len(paths))
	tracks := make(chan track, len(paths))

	var wg sync.WaitGroup
	for n := 0; n < i.opts.NumWorkers; n++ {
		wg.Add(1)
		go i.readWorker(ctx, &wg, jobs, tracks)
	}

	go func() {
		defer close(jobs)
		for n, path := range paths {
			if err := limiter.Wait(ctx); err != nil {
				return
			}
			sendProgress(progress, readTagsUpdate(n+1, len(paths), path))
			jobs <- path
		}
	}()

	go func() {
		wg.Wait()
		close(tracks)
	}()

	completed := 0
	for t := range tracks {
		completed++
		if err := i.importTrack(ctx, t, result); err != nil {
			result.Failed = append(result.Failed, FileResult{Path: t.Path, Error: err.Error()})
			i.logger.Warn("import failed", "path", t.Path, "error", err)
			sendProgress(progress, importFailedUpdate(completed, len(paths), t.Path, err))
			continue
		}
		sendProgress(progress, importedUpdate(completed, len(paths), t))
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("import interrupted: %w", err)
	}

	i.logger.Info("import complete",
		"files", result.Files, "artists", result.ArtistsCreated, "albums", result.AlbumsCreated,
		"songs", result.SongsCreated, "skipped", result.Skipped, "failed", len(result.Failed))
	return result, nil
}

func (i *Importer) readWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan string, tracks chan<- track) {
	defer wg.Done()

	for path := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}
		tracks <- i.readTrack(path)
	}
}

// readTrack reads the tags of path. Files without readable tags fall back to names derived
// from the path.
func (i *Importer) readTrack(path string) track {
	t := track{Path: path}

	if f, err := os.Open(path); err == nil {
		meta, err := tag.ReadFrom(f)
		f.Close()
		if err == nil {
			t.Title = meta.Title()
			t.Artist = meta.Artist()
			if t.Artist == "" {
				t.Artist = meta.AlbumArtist()
			}
			t.Album = meta.Album()
			t.Genre = meta.Genre()
			t.Year = meta.Year()
		} else {
			i.logger.Debug("no readable tags", "path", path, "error", err)
		}
	}

	if t.Artist == "" {
		t.Artist = unknownArtist
	}
	if t.Album == "" {
		t.Album = filepath.Base(filepath.Dir(path))
		if t.Album == "." || t.Album == string(filepath.Separator) {
			t.Album = unknownAlbum
		}
	}
	if t.Title == "" {
		t.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if t.Genre == "" {
		t.Genre = i.opts.Genre
	}
	return t
}

func (i *Importer) importTrack(ctx context.Context, t track, result *ImportResult) error {
	if err := i.ensureGenre(ctx, t.Genre); err != nil {
		return err
	}
	if err := i.ensureArtist(ctx, t.Artist, result); err != nil {
		return err
	}
	albumID, err := i.ensureAlbum(ctx, t, result)
	if err != nil {
		return err
	}

	_, err = i.svc.Songs.Create(ctx, services.SongInput{Title: t.Title, Artist: t.Artist, Album: albumID})
	switch {
	case errors.Is(err, shared.ErrDuplicateEntity):
		result.Skipped++
		return nil
	case err != nil:
		return fmt.Errorf("failed to create song: %w", err)
	}
	result.SongsCreated++
	return nil
}

func (i *Importer) ensureGenre(ctx context.Context, name string) error {
	key := shared.FoldName(name)
	if i.genres[key] {
		return nil
	}
	_, err := i.svc.Genres.Create(ctx, services.GenreInput{Name: name})
	if err != nil && !errors.Is(err, shared.ErrDuplicateEntity) {
		return fmt.Errorf("failed to create genre: %w", err)
	}
	i.genres[key] = true
	return nil
}

func (i *Importer) ensureArtist(ctx context.Context, name string, result *ImportResult) error {
	key := shared.FoldName(name)
	if i.artists[key] {
		return nil
	}
	_, err := i.svc.Artists.Create(ctx, services.ArtistInput{Name: name, Country: i.opts.Country})
	switch {
	case errors.Is(err, shared.ErrDuplicateEntity):
	case err != nil:
		return fmt.Errorf("failed to create artist: %w", err)
	default:
		result.ArtistsCreated++
	}
	i.artists[key] = true
	return nil
}

// ensureAlbum returns the id of the artist's album titled t.Album, creating it when missing.
func (i *Importer) ensureAlbum(ctx context.Context, t track, result *ImportResult) (string, error) {
	key := shared.FoldName(t.Artist) + "\x00" + shared.FoldName(t.Album)
	if id, ok := i.albums[key]; ok {
		return id, nil
	}

	album, err := i.svc.Albums.Create(ctx, services.AlbumInput{Title: t.Album, Year: t.Year, Genre: t.Genre, Artist: t.Artist})
	switch {
	case errors.Is(err, shared.ErrDuplicateEntity):
		albums, err := i.svc.Albums.List(ctx, services.AlbumFilter{Artist: t.Artist})
		if err != nil {
			return "", fmt.Errorf("failed to look up album: %w", err)
		}
		for _, a := range albums {
			if strings.EqualFold(a.Title(), shared.NormalizeName(t.Album)) {
				i.albums[key] = a.ID()
				return a.ID(), nil
			}
		}
		return "", fmt.Errorf("album %q reported as duplicate but not found: %w", t.Album, shared.ErrInternalFailure)
	case err != nil:
		return "", fmt.Errorf("failed to create album: %w", err)
	}

	result.AlbumsCreated++
	i.albums[key] = album.ID()
	return album.ID(), nil
}

// scanAudioFiles lists the audio files under root in lexical order.
func scanAudioFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to read library root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan library: %w", err)
	}
	return paths, nil
}
