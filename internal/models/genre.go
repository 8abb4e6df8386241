package models

import (
	"encoding/json"
	"time"

	"github.com/desertthunder/discography/internal/shared"
)

// Genre names are unique ignoring case and repeated whitespace.
type Genre struct {
	record
	name   string
	active bool
}

// NewGenre creates an active [Genre].
func NewGenre(name string) *Genre {
	return &Genre{record: newRecord(), name: shared.NormalizeName(name), active: true}
}

func (g *Genre) Name() string { return g.name }

// NameKey is the case-folded name used for uniqueness.
func (g *Genre) NameKey() string { return shared.FoldName(g.name) }
func (g *Genre) Active() bool { return g.active }

func (g *Genre) SetName(name string) { g.name = shared.NormalizeName(name) }
func (g *Genre) SetActive(active bool) { g.active = active }

func (g *Genre) Validate() error {
	return validateLength("genre name", g.name, 1, 50)
}

// MarshalJSON implements [json.Marshaler].
func (g *Genre) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Name      string    `json:"name"`
		Active    bool      `json:"active"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}{g.id, g.name, g.active, g.createdAt, g.updatedAt})
}
