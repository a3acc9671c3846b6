// Package dapi is the entry point of DesignSafe API client.
//
// A Client bundles namespaces for apps, files, jobs, systems and research
// databases, sharing one authenticated TAPIS client.
//
//	client, err := dapi.New(ctx)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	uri, err := client.Files.TranslatePathToURI(ctx, "/MyData/opensees", true)
package dapi

import (
	"context"
	"io"
	"os"

	"github.com/designsafe-ci/dapi/pkg/apps"
	"github.com/designsafe-ci/dapi/pkg/auth"
	"github.com/designsafe-ci/dapi/pkg/db"
	"github.com/designsafe-ci/dapi/pkg/files"
	"github.com/designsafe-ci/dapi/pkg/jobs"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/metrics"
	"github.com/designsafe-ci/dapi/pkg/systems"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"go.uber.org/zap"
)

// EnvBaseURL overrides tapis.DefaultBaseURL.
const EnvBaseURL = "TAPIS_BASE_URL"

type Client struct {
	Apps    *apps.Apps
	Files   *files.Files
	Jobs    *jobs.Jobs
	Systems *systems.Systems
	DB      *db.Accessor

	tapis tapis.Client
}

type config struct {
	baseURL     string
	auth        []auth.Option
	tapis       []tapis.Option
	db          []db.AccessorOption
	jobs        []jobs.Option
	progress    io.Writer
	metrics     *metrics.Metrics
	withMetrics bool
}

type Option func(*config) *config

// WithBaseURL sets the TAPIS tenant. By default, $TAPIS_BASE_URL or tapis.DefaultBaseURL.
func WithBaseURL(baseURL string) Option {
	return func(c *config) *config {
		c.baseURL = baseURL
		return c
	}
}

// WithAuth sets options of credential resolution, used by New.
func WithAuth(options ...auth.Option) Option {
	return func(c *config) *config {
		c.auth = append(c.auth, options...)
		return c
	}
}

func WithTapisOptions(options ...tapis.Option) Option {
	return func(c *config) *config {
		c.tapis = append(c.tapis, options...)
		return c
	}
}

func WithDatabaseOptions(options ...db.AccessorOption) Option {
	return func(c *config) *config {
		c.db = append(c.db, options...)
		return c
	}
}

func WithJobsOptions(options ...jobs.Option) Option {
	return func(c *config) *config {
		c.jobs = append(c.jobs, options...)
		return c
	}
}

// WithProgress shows progress of file transfers on w.
func WithProgress(w io.Writer) Option {
	return func(c *config) *config {
		c.progress = w
		return c
	}
}

// WithMetrics records requests, submissions and polls in m. nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) *config {
		c.metrics = m
		c.withMetrics = true
		return c
	}
}

func buildConfig(options []Option) *config {
	c := &config{}
	for _, opt := range options {
		c = opt(c)
	}
	if c.baseURL == "" {
		c.baseURL = os.Getenv(EnvBaseURL)
	}
	if c.baseURL == "" {
		c.baseURL = tapis.DefaultBaseURL
	}
	if c.withMetrics {
		c.tapis = append(c.tapis, tapis.WithMetrics(c.metrics))
		c.jobs = append(c.jobs, jobs.WithMetrics(c.metrics))
	}
	return c
}

// New resolves credentials, obtains an access token and builds a Client.
//
// Credentials are read as auth.Resolve does.
// Rejected credentials are errors being derr.ErrAuthentication.
func New(ctx context.Context, options ...Option) (*Client, error) {
	c := buildConfig(options)

	cred, err := auth.Resolve(c.auth...)
	if err != nil {
		return nil, err
	}
	token, err := tapis.CreateToken(ctx, c.baseURL, cred.Username, cred.Password, c.tapis...)
	if err != nil {
		return nil, err
	}
	log.Named(log.Auth).Info("authenticated", zap.String("username", cred.Username), zap.String("tenant", c.baseURL))

	return build(c, token.AccessToken, tapis.WithUsername(cred.Username))
}

// FromToken builds a Client with an access token obtained before.
//
// The username is read from the token. Empty baseURL means the default.
func FromToken(baseURL string, token string, options ...Option) (*Client, error) {
	if baseURL != "" {
		options = append(options, WithBaseURL(baseURL))
	}
	return build(buildConfig(options), token)
}

func build(c *config, token string, extra ...tapis.Option) (*Client, error) {
	tc, err := tapis.NewClient(c.baseURL, token, append(c.tapis, extra...)...)
	if err != nil {
		return nil, err
	}

	var fopts []files.Option
	if c.progress != nil {
		fopts = append(fopts, files.WithProgress(c.progress))
	}
	f := files.New(tc, fopts...)

	return &Client{
		Apps:    apps.New(tc),
		Files:   f,
		Jobs:    jobs.New(tc, append([]jobs.Option{jobs.WithFiles(f)}, c.jobs...)...),
		Systems: systems.New(tc),
		DB:      db.NewAccessor(c.db...),
		tapis:   tc,
	}, nil
}

// Tapis returns the underlying REST client.
func (c *Client) Tapis() tapis.Client {
	return c.tapis
}

// Close closes databases opened so far.
func (c *Client) Close() error {
	return c.DB.CloseAll()
}
