// Package integrity keeps the catalog's cross-collection references consistent.
//
// [Validator] resolves every reference a mutation carries before anything is written.
// [Engine] then performs the authoritative primary write followed by best-effort paired
// writes to the back-reference sets, journaling any paired write that fails.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/discography/internal/models"
	"github.com/desertthunder/discography/internal/shared"
)

// Status is the outcome of checking one reference.
type Status int

const (
	Malformed Status = iota // not an identifier for this backend
	NotFound                // well-formed, nothing live matches
	Valid                   // resolved, see Result.Doc
)

func (s Status) String() string {
	switch s {
	case Malformed:
		return "malformed"
	case NotFound:
		return "not found"
	case Valid:
		return "valid"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is a checked reference. Doc is only set when Status is [Valid].
type Result[T models.Model] struct {
	Status Status
	Entity string
	Ref    string
	Doc    T
}

// Err converts a failed check into an error wrapping the matching sentinel.
func (r Result[T]) Err() error {
	switch r.Status {
	case Valid:
		return nil
	case Malformed:
		return fmt.Errorf("%s reference %q: %w", r.Entity, r.Ref, shared.ErrMalformedReference)
	default:
		return fmt.Errorf("%s reference %q: %w", r.Entity, r.Ref, shared.ErrReferenceNotFound)
	}
}

// Validator checks references against the stores of a catalog.
type Validator struct {
	catalog *models.Catalog
}

func NewValidator(catalog *models.Catalog) *Validator {
	return &Validator{catalog: catalog}
}

// check runs byID for identifier-shaped refs. Other non-blank refs go to byName when the
// entity accepts names, otherwise they are malformed.
func check[T models.Model](ctx context.Context, ids models.IDScheme, entity, ref string, byID, byName func(context.Context, string) (T, error)) (Result[T], error) {
	res := Result[T]{Entity: entity, Ref: ref, Status: Malformed}

	find := byID
	if !ids.Valid(ref) {
		if byName == nil || strings.TrimSpace(ref) == "" {
			return res, nil
		}
		find = byName
	}

	doc, err := find(ctx, ref)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		res.Status = NotFound
		return res, nil
	case err != nil:
		return res, fmt.Errorf("failed to resolve %s %q: %w", entity, ref, err)
	}

	res.Status = Valid
	res.Doc = doc
	return res, nil
}

// Artist resolves an artist by id or by exact name.
func (v *Validator) Artist(ctx context.Context, ref string) (Result[*models.Artist], error) {
	return check(ctx, v.catalog.IDs, "artist", ref, v.catalog.Artists.Get, v.catalog.Artists.FindByName)
}

// Genre resolves a genre by id or by case-insensitive name.
func (v *Validator) Genre(ctx context.Context, ref string) (Result[*models.Genre], error) {
	return check(ctx, v.catalog.IDs, "genre", ref, v.catalog.Genres.Get, v.catalog.Genres.FindByName)
}

func (v *Validator) Album(ctx context.Context, ref string) (Result[*models.Album], error) {
	return check(ctx, v.catalog.IDs, "album", ref, v.catalog.Albums.Get, nil)
}

func (v *Validator) Song(ctx context.Context, ref string) (Result[*models.Song], error) {
	return check(ctx, v.catalog.IDs, "song", ref, v.catalog.Songs.Get, nil)
}

func (v *Validator) Playlist(ctx context.Context, ref string) (Result[*models.Playlist], error) {
	return check(ctx, v.catalog.IDs, "playlist", ref, v.catalog.Playlists.Get, nil)
}

func (v *Validator) User(ctx context.Context, ref string) (Result[*models.User], error) {
	return check(ctx, v.catalog.IDs, "user", ref, v.catalog.Users.Get, nil)
}

// Songs checks a set of song references in one round trip and returns the live songs in
// reference order. Any malformed, missing or soft-deleted reference fails the whole set.
func (v *Validator) Songs(ctx context.Context, refs []string) ([]*models.Song, error) {
	refs = models.UniqueIDs(refs)
	for _, ref := range refs {
		if !v.catalog.IDs.Valid(ref) {
			return nil, Result[*models.Song]{Status: Malformed, Entity: "song", Ref: ref}.Err()
		}
	}
	if len(refs) == 0 {
		return []*models.Song{}, nil
	}

	found, err := v.catalog.Songs.GetMany(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve songs: %w", err)
	}

	byID := make(map[string]*models.Song, len(found))
	for _, s := range found {
		byID[s.ID()] = s
	}

	songs := make([]*models.Song, 0, len(refs))
	for _, ref := range refs {
		s, ok := byID[ref]
		if !ok {
			return nil, Result[*models.Song]{Status: NotFound, Entity: "song", Ref: ref}.Err()
		}
		songs = append(songs, s)
	}
	return songs, nil
}

// Genres checks each genre reference and returns canonical ids in input order.
func (v *Validator) Genres(ctx context.Context, refs []string) ([]string, error) {
	ids := make([]string, 0, len(refs))
	for _, ref := range models.UniqueIDs(refs) {
		genre, err := Require(v.Genre(ctx, ref))
		if err != nil {
			return nil, err
		}
		ids = append(ids, genre.ID())
	}
	return models.UniqueIDs(ids), nil
}

// Require folds a check and its lookup error into a single error.
func Require[T models.Model](res Result[T], err error) (T, error) {
	if err != nil {
		var zero T
		return zero, err
	}
	if err := res.Err(); err != nil {
		var zero T
		return zero, err
	}
	return res.Doc, nil
}
