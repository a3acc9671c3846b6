// Package profiles persists logins to TAPIS tenants.
package profiles

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/designsafe-ci/dapi/pkg/config/open"
	"github.com/hectane/go-acl"
	yaml "gopkg.in/yaml.v3"
)

var ErrProfileStoreNotFound = errors.New("profile store is not found")
var ErrCannotUpdateStore = errors.New("cannot update profile store")
var ErrProfileInvalid = errors.New("dapi profile is invalid")
var ErrProfileNotFound = errors.New("dapi profile is not found")

// DefaultProfileName is used when no profile is named.
const DefaultProfileName = "default"

// ProfileStore maps profile names to profiles.
type ProfileStore map[string]*Profile

// Profile is a login to a TAPIS tenant.
type Profile struct {
	// TAPIS tenant, like "https://designsafe.tapis.io"
	BaseURL string `yaml:"baseUrl"`

	Username string `yaml:"username"`

	Token Token `yaml:"token"`
}

type Token struct {
	AccessToken string `yaml:"accessToken"`

	// zero if unknown.
	ExpiresAt time.Time `yaml:"expiresAt,omitempty"`
}

// Verify returns ErrProfileInvalid when p cannot be used to call TAPIS.
func (p *Profile) Verify() error {
	if u, err := url.Parse(p.BaseURL); err != nil || !u.IsAbs() {
		return fmt.Errorf("%w: baseUrl is not URL: %s", ErrProfileInvalid, p.BaseURL)
	}
	if p.Token.AccessToken == "" {
		return fmt.Errorf("%w: no access token", ErrProfileInvalid)
	}
	return nil
}

// Expired reports whether the token is expired at now.
//
// Tokens with unknown expiry are treated as alive.
func (p *Profile) Expired(now time.Time) bool {
	if p.Token.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(p.Token.ExpiresAt)
}

// Get returns the named profile. name "" means DefaultProfileName.
func (ps ProfileStore) Get(name string) (*Profile, error) {
	if name == "" {
		name = DefaultProfileName
	}
	p, ok := ps[name]
	if !ok || p == nil {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p, nil
}

// LoadProfileStore reads the profile store at path.
func LoadProfileStore(path string) (ProfileStore, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrProfileStoreNotFound, path)
		}
		return nil, err
	}
	return Unmarshal(buf)
}

// Unmarshal reads profile store from yaml.
func Unmarshal(buf []byte) (ProfileStore, error) {
	ret := ProfileStore{}
	if err := yaml.Unmarshal(buf, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Save writes the store to path, keeping the previous content at path + ".backup".
//
// The backup is removed after the store is written successfully.
func (ps ProfileStore) Save(path string) error {
	buf, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}

	bkpath := path + ".backup"
	previous, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := writeSafe(bkpath, previous); err != nil {
			return fmt.Errorf("%w: cannot backup: %w", ErrCannotUpdateStore, err)
		}
	case os.IsNotExist(err):
	case os.IsPermission(err):
		return fmt.Errorf("%w, because no permission to read file at %s", ErrCannotUpdateStore, path)
	default:
		return err
	}

	if err := writeSafe(path, buf); err != nil {
		return fmt.Errorf("%w: %w (previous content is kept at %s)", ErrCannotUpdateStore, err, bkpath)
	}
	// In case of the existing file with loose permissions.
	if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
		return err
	}
	os.Remove(bkpath)
	return nil
}

func writeSafe(path string, content []byte) error {
	f, err := open.NewSafeFile(path)
	if err != nil {
		return err
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
