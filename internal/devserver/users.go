package devserver

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/gundaabinav333/authshell/internal/core/domain"
)

type user struct {
	cred domain.Credential
	hash string
}

// Directory is the fixed set of users the devserver accepts.
type Directory struct {
	byEmail map[string]*user

	// dummyHash is verified for unknown emails so both paths cost the same.
	dummyHash string
}

// NewDirectory hashes plaintext passwords and assigns ULID subject IDs.
func NewDirectory(users []UserConfig, params HashParams) (*Directory, error) {
	d := &Directory{byEmail: make(map[string]*user, len(users))}

	for _, u := range users {
		hash := u.PasswordHash
		if hash == "" {
			var err error
			if hash, err = HashPassword(u.Password, params); err != nil {
				return nil, fmt.Errorf("hash password for %s: %w", u.Email, err)
			}
		} else if _, _, _, err := parseHash(hash); err != nil {
			return nil, fmt.Errorf("user %s: %w", u.Email, err)
		}

		d.byEmail[normalizeEmail(u.Email)] = &user{
			cred: domain.Credential{
				ID:     ulid.Make().String(),
				Name:   u.Name,
				Email:  u.Email,
				Roles:  append([]string(nil), u.Roles...),
				Avatar: u.Avatar,
			},
			hash: hash,
		}
	}

	dummy, err := HashPassword("dummy", params)
	if err != nil {
		return nil, err
	}
	d.dummyHash = dummy
	return d, nil
}

// Authenticate returns the user's credential when password matches.
func (d *Directory) Authenticate(email, password string) (*domain.Credential, bool) {
	u, ok := d.byEmail[normalizeEmail(email)]
	if !ok {
		_, _ = VerifyPassword(password, d.dummyHash)
		return nil, false
	}

	match, err := VerifyPassword(password, u.hash)
	if err != nil || !match {
		return nil, false
	}
	return u.cred.Clone(), true
}

// Lookup returns the credential for a subject ID.
func (d *Directory) Lookup(id string) (*domain.Credential, bool) {
	for _, u := range d.byEmail {
		if u.cred.ID == id {
			return u.cred.Clone(), true
		}
	}
	return nil, false
}

// Len returns the number of users.
func (d *Directory) Len() int {
	return len(d.byEmail)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
