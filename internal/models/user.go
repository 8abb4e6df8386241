package models

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/discography/internal/shared"
)

// User mirrors an identity provider account keyed by the provider's subject.
type User struct {
	record
	subject   string
	email     string
	firstName string
	lastName  string
	active    bool
	admin     bool
	playlists []string
}

// NewUser creates an active, non-admin [User].
func NewUser(subject, email, firstName, lastName string) *User {
	return &User{
		record:    newRecord(),
		subject:   subject,
		email:     strings.ToLower(strings.TrimSpace(email)),
		firstName: shared.NormalizeName(firstName),
		lastName:  shared.NormalizeName(lastName),
		active:    true,
		playlists: []string{},
	}
}

func (u *User) Subject() string { return u.subject }
func (u *User) Email() string { return u.email }
func (u *User) FirstName() string { return u.firstName }
func (u *User) LastName() string { return u.lastName }
func (u *User) Active() bool { return u.active }
func (u *User) Admin() bool { return u.admin }
func (u *User) Playlists() []string { return slices.Clone(u.playlists) }

func (u *User) SetSubject(subject string) { u.subject = subject }
func (u *User) SetEmail(email string) { u.email = strings.ToLower(strings.TrimSpace(email)) }
func (u *User) SetFirstName(name string) { u.firstName = shared.NormalizeName(name) }
func (u *User) SetLastName(name string) { u.lastName = shared.NormalizeName(name) }
func (u *User) SetActive(active bool) { u.active = active }
func (u *User) SetAdmin(admin bool) { u.admin = admin }
func (u *User) SetPlaylists(ids []string) { u.playlists = UniqueIDs(ids) }

// Validate checks the identity fields. Names are optional but limited to 50 characters.
func (u *User) Validate() error {
	if u.subject == "" {
		return fmt.Errorf("%w: user subject is required", shared.ErrInvalidInput)
	}
	if !strings.Contains(u.email, "@") {
		return fmt.Errorf("%w: user email is invalid", shared.ErrInvalidInput)
	}
	if utf8.RuneCountInString(u.firstName) > 50 || utf8.RuneCountInString(u.lastName) > 50 {
		return fmt.Errorf("%w: user names must be at most 50 characters", shared.ErrInvalidInput)
	}
	return nil
}

// MarshalJSON implements [json.Marshaler]. The provider subject is not exposed.
func (u *User) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		FirstName string    `json:"first_name"`
		LastName  string    `json:"last_name"`
		Active    bool      `json:"active"`
		Admin     bool      `json:"admin"`
		Playlists []string  `json:"playlists"`
		CreatedAt time.Time `json:"created_at"`
	}{u.id, u.email, u.firstName, u.lastName, u.active, u.admin, nonNil(u.playlists), u.createdAt})
}
