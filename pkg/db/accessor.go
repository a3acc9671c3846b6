package db

import (
	"context"
	"errors"
	"fmt"
	"sync"

	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/log"
	"go.uber.org/zap"
)

// Opener opens the database of the shorthand.
type Opener func(ctx context.Context, name string) (*Database, error)

// Accessor opens known databases on first use.
type Accessor struct {
	mu   sync.Mutex
	open Opener
	dbs  map[string]*Database
}

type AccessorOption func(*Accessor) *Accessor

// WithEnv reads database settings from env instead of os.Getenv.
func WithEnv(env func(string) string, opts ...Option) AccessorOption {
	return func(a *Accessor) *Accessor {
		a.open = EnvOpener(env, opts...)
		return a
	}
}

// WithOpener replaces how databases are opened.
func WithOpener(open Opener) AccessorOption {
	return func(a *Accessor) *Accessor {
		a.open = open
		return a
	}
}

// EnvOpener opens databases with ConfigFor(name, env).
func EnvOpener(env func(string) string, opts ...Option) Opener {
	return func(ctx context.Context, name string) (*Database, error) {
		cfg, err := ConfigFor(name, env)
		if err != nil {
			return nil, err
		}
		return Open(ctx, cfg, opts...)
	}
}

func NewAccessor(options ...AccessorOption) *Accessor {
	a := &Accessor{open: EnvOpener(nil), dbs: map[string]*Database{}}
	for _, opt := range options {
		a = opt(a)
	}
	return a
}

// Get returns the database of the shorthand, opening it at the first call.
//
// When opening fails, the next call tries again.
func (a *Accessor) Get(ctx context.Context, name string) (*Database, error) {
	if _, ok := shorthands[name]; !ok {
		return nil, fmt.Errorf("%w: invalid db shorthand '%s'. allowed: %v", derr.ErrDatabase, name, Shorthands())
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if d, ok := a.dbs[name]; ok {
		return d, nil
	}

	log.Named(log.DB).Info("first access, connecting", zap.String("db", name))
	d, err := a.open(ctx, name)
	if err != nil {
		return nil, err
	}
	a.dbs[name] = d
	return d, nil
}

func (a *Accessor) NGL(ctx context.Context) (*Database, error) {
	return a.Get(ctx, NGL)
}

func (a *Accessor) VP(ctx context.Context) (*Database, error) {
	return a.Get(ctx, VP)
}

func (a *Accessor) EQ(ctx context.Context) (*Database, error) {
	return a.Get(ctx, EQ)
}

// CloseAll closes every open database. Closed ones are opened again by Get.
func (a *Accessor) CloseAll() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	for name, d := range a.dbs {
		if err := d.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(a.dbs, name)
	}
	log.Named(log.DB).Debug("databases closed")
	return errors.Join(errs...)
}
