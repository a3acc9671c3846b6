// Package db queries DesignSafe research databases.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/log"
	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"
)

// Database is a connection pool to a database.
type Database struct {
	Name string

	db     *sql.DB
	tunnel *openTunnel
}

type options struct {
	tunnel      *Tunnel
	conn        *sql.DB
	maxLifetime time.Duration
}

type Option func(*options) *options

// WithTunnel connects the database through an SSH tunnel.
func WithTunnel(t Tunnel) Option {
	return func(o *options) *options {
		o.tunnel = &t
		return o
	}
}

// WithConn uses conn instead of opening a new pool. cfg is used only for its name.
func WithConn(conn *sql.DB) Option {
	return func(o *options) *options {
		o.conn = conn
		return o
	}
}

// WithMaxLifetime recycles connections older than d. Default is 1 hour.
func WithMaxLifetime(d time.Duration) Option {
	return func(o *options) *options {
		o.maxLifetime = d
		return o
	}
}

// Open connects to the database and pings it once.
func Open(ctx context.Context, cfg Config, opts ...Option) (*Database, error) {
	o := &options{maxLifetime: time.Hour}
	for _, opt := range opts {
		o = opt(o)
	}
	logger := log.Named(log.DB).With(zap.String("db", cfg.Name))

	d := &Database{Name: cfg.Name, db: o.conn}
	if d.db == nil {
		driver, err := cfg.driverName()
		if err != nil {
			return nil, err
		}
		if o.tunnel != nil {
			ot, err := o.tunnel.start(ctx, cfg.addr())
			if err != nil {
				return nil, err
			}
			d.tunnel = ot
			cfg.Host = "127.0.0.1"
			cfg.Port = ot.port
		}

		logger.Debug("opening", zap.String("driver", driver), zap.String("database", cfg.Database), zap.String("host", cfg.addr()))
		conn, err := sql.Open(driver, cfg.DSN())
		if err != nil {
			d.closeTunnel()
			return nil, derr.Wrap(derr.ErrDatabase, err, "cannot open database '%s'", cfg.Name)
		}
		conn.SetConnMaxLifetime(o.maxLifetime)
		d.db = conn
	}

	if err := d.db.PingContext(ctx); err != nil {
		d.Close()
		return nil, derr.Wrap(derr.ErrDatabase, err, "cannot connect to database '%s'", cfg.Name)
	}
	logger.Info("connected")
	return d, nil
}

// Query runs query and reads its whole result.
func (d *Database) Query(ctx context.Context, query string, args ...any) (*Table, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: sql query is required", derr.ErrDatabase)
	}
	log.Named(log.DB).Debug("query", zap.String("db", d.Name), zap.String("sql", query))

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, derr.Wrap(derr.ErrDatabase, err, "query on '%s' failed", d.Name)
	}
	defer rows.Close()

	t, err := scan(rows)
	if err != nil {
		return nil, derr.Wrap(derr.ErrDatabase, err, "cannot read result from '%s'", d.Name)
	}
	return t, nil
}

// Close closes the pool, and the tunnel if any.
func (d *Database) Close() error {
	defer d.closeTunnel()
	if err := d.db.Close(); err != nil {
		return derr.Wrap(derr.ErrDatabase, err, "cannot close database '%s'", d.Name)
	}
	return nil
}

func (d *Database) closeTunnel() {
	if d.tunnel != nil {
		d.tunnel.Close()
		d.tunnel = nil
	}
}
