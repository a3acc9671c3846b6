// Package auth resolves DesignSafe credentials and reads TAPIS tokens.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"

	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	EnvUsername = "DESIGNSAFE_USERNAME"
	EnvPassword = "DESIGNSAFE_PASSWORD"

	// DefaultEnvFile is read when exists and no env file is specified.
	DefaultEnvFile = ".env"
)

type Credentials struct {
	Username string
	Password string
}

func (c Credentials) String() string {
	return fmt.Sprintf("Credentials{Username: %s, Password: ***}", c.Username)
}

type resolution struct {
	username string
	password string
	envFile  string
	lookup   func(string) (string, bool)
	prompter Prompter
}

type Option func(*resolution) *resolution

// WithUsername gives username explicitly. It takes precedence over anything else.
func WithUsername(username string) Option {
	return func(r *resolution) *resolution {
		r.username = username
		return r
	}
}

// WithPassword gives password explicitly. It takes precedence over anything else.
func WithPassword(password string) Option {
	return func(r *resolution) *resolution {
		r.password = password
		return r
	}
}

// WithEnvFile reads the dotenv file at path instead of DefaultEnvFile.
//
// Unlike DefaultEnvFile, the file must exist.
func WithEnvFile(path string) Option {
	return func(r *resolution) *resolution {
		r.envFile = path
		return r
	}
}

// WithLookupEnv replaces os.LookupEnv.
func WithLookupEnv(lookup func(string) (string, bool)) Option {
	return func(r *resolution) *resolution {
		r.lookup = lookup
		return r
	}
}

// WithPrompter sets how to ask users for missing credentials.
//
// Pass nil to disable prompting.
func WithPrompter(p Prompter) Option {
	return func(r *resolution) *resolution {
		r.prompter = p
		return r
	}
}

// Resolve determines credentials.
//
// Each of username and password is taken from the first of:
//
//  1. WithUsername / WithPassword
//  2. environment variables DESIGNSAFE_USERNAME / DESIGNSAFE_PASSWORD
//  3. the dotenv file (WithEnvFile, or ./.env if exists)
//  4. the prompter
//
// It returns ErrAuthentication if either is still empty.
func Resolve(options ...Option) (Credentials, error) {
	r := &resolution{
		lookup:   os.LookupEnv,
		prompter: NewTerminalPrompter(),
	}
	for _, opt := range options {
		r = opt(r)
	}

	dotenv, err := readEnvFile(r.envFile)
	if err != nil {
		return Credentials{}, err
	}

	lookup := func(key string) string {
		if v, ok := r.lookup(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	cred := Credentials{Username: r.username, Password: r.password}
	if cred.Username == "" {
		cred.Username = lookup(EnvUsername)
	}
	if cred.Password == "" {
		cred.Password = lookup(EnvPassword)
	}

	if r.prompter != nil {
		if cred.Username == "" {
			u, err := r.prompter.Username()
			if err != nil {
				return Credentials{}, derr.Wrap(derr.ErrAuthentication, err, "username input cancelled")
			}
			cred.Username = u
		}
		if cred.Password == "" {
			p, err := r.prompter.Password()
			if err != nil {
				return Credentials{}, derr.Wrap(derr.ErrAuthentication, err, "password input cancelled")
			}
			cred.Password = p
		}
	}

	cred.Username = strings.TrimSpace(cred.Username)
	if cred.Username == "" || cred.Password == "" {
		return Credentials{}, fmt.Errorf("%w: username and password are required", derr.ErrAuthentication)
	}
	return cred, nil
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err == nil {
		log.Named(log.Auth).Debug("dotenv file is loaded", zap.String("path", path))
		return values, nil
	}
	if !explicit && errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	return nil, derr.Wrap(derr.ErrAuthentication, err, "cannot read env file %s", path)
}
