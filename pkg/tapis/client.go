// Package tapis is a client of the TAPIS v3 REST API,
// covering the endpoints dapi uses.
package tapis

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	apifiles "github.com/designsafe-ci/dapi/api-types/files"
	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	apisystems "github.com/designsafe-ci/dapi/api-types/systems"
	"github.com/designsafe-ci/dapi/pkg/auth"
	"github.com/designsafe-ci/dapi/pkg/buildtime"
	"github.com/designsafe-ci/dapi/pkg/metrics"
	"github.com/designsafe-ci/dapi/pkg/utils"
	"github.com/designsafe-ci/dapi/pkg/utils/retry"
	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the TAPIS tenant of DesignSafe.
const DefaultBaseURL = "https://designsafe.tapis.io"

// HeaderToken carries the access token.
const HeaderToken = "X-Tapis-Token"

type Client interface {
	// Username is the user the access token is issued to.
	Username() string

	// BaseURL is the TAPIS tenant URL, like "https://designsafe.tapis.io".
	BaseURL() string

	// GetApps searches applications.
	//
	// # Args
	//
	// - context.Context
	//
	// - AppQuery: search condition. Zero value lists all apps visible to the user.
	//
	// # Returns
	//
	// - []apiapps.Summary: found apps.
	//
	// - error
	GetApps(ctx context.Context, query AppQuery) ([]apiapps.Summary, error)

	// GetApp gets an application descriptor.
	//
	// # Args
	//
	// - context.Context
	//
	// - appId: id of the app.
	//
	// - version: version of the app. Pass "" to get the latest.
	//
	// # Returns
	//
	// - apiapps.App
	//
	// - error: It is an error with status code 404 (see IsNotFound) when no such app.
	GetApp(ctx context.Context, appId string, version string) (apiapps.App, error)

	// SubmitJob submits a job request, and returns the created job.
	SubmitJob(ctx context.Context, request apijobs.Request) (apijobs.Job, error)

	// GetJob gets details of a job.
	GetJob(ctx context.Context, jobUuid string) (apijobs.Job, error)

	// GetJobStatus gets the current status string of a job.
	GetJobStatus(ctx context.Context, jobUuid string) (string, error)

	// GetJobHistory gets status-changing events of a job, in chronological order.
	GetJobHistory(ctx context.Context, jobUuid string) ([]apijobs.HistoryEvent, error)

	// CancelJob requests cancellation of a job.
	//
	// TAPIS responds 400 for jobs already in terminal state.
	CancelJob(ctx context.Context, jobUuid string) error

	// ListFiles lists files at path on the system.
	//
	// # Args
	//
	// - context.Context
	//
	// - systemId, path: location to be listed. path is not URL-escaped.
	//
	// - limit, offset: paging. limit <= 0 means TAPIS default.
	ListFiles(ctx context.Context, systemId string, path string, limit int, offset int) ([]apifiles.FileInfo, error)

	// GetFileContents downloads a file.
	//
	// # Args
	//
	// - context.Context
	//
	// - systemId, path: location to be downloaded. path is not URL-escaped.
	//
	// - zip: if true, TAPIS sends the path (file or directory) as a zip archive.
	//
	// - handler: called with the content stream. Its error is returned as is.
	GetFileContents(ctx context.Context, systemId string, path string, zip bool, handler func(io.Reader) error) error

	// InsertFile uploads content as the file at path on the system.
	InsertFile(ctx context.Context, systemId string, path string, content io.Reader) error

	// GetSystems searches systems.
	GetSystems(ctx context.Context, query SystemQuery) ([]apisystems.System, error)

	// GetSystem gets a system.
	GetSystem(ctx context.Context, systemId string) (apisystems.System, error)
}

// AppQuery is a condition of GetApps.
type AppQuery struct {
	// TAPIS search expression, like "(id.like.*opensees*)".
	Search string

	// OWNED, SHARED_PUBLIC, ALL, ... Empty means TAPIS default.
	ListType string

	// attributes to be returned, like []string{"id", "version", "owner"}.
	Select []string
}

// SystemQuery is a condition of GetSystems.
type SystemQuery struct {
	Search   string
	ListType string
	Select   []string
}

type client struct {
	http     *resty.Client
	api      string
	baseURL  string
	username string
	metrics  *metrics.Metrics

	retries int
	backoff func() retry.Backoff
}

type config struct {
	httpClient *http.Client
	username   string
	metrics    *metrics.Metrics
	timeout    time.Duration
	retries    int
	interval   time.Duration
	userAgent  string
}

type Option func(*config) *config

// WithHTTPClient uses hc for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) *config {
		c.httpClient = hc
		return c
	}
}

// WithUsername sets username instead of reading it from the access token.
func WithUsername(username string) Option {
	return func(c *config) *config {
		c.username = username
		return c
	}
}

// WithMetrics records requests to m. Pass nil to disable.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *config) *config {
		c.metrics = m
		return c
	}
}

// WithTimeout sets timeout per request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) *config {
		c.timeout = d
		return c
	}
}

// WithRetry makes GET requests retried up to n times
// on transport errors and 5xx responses, waiting interval * 2^N.
func WithRetry(n int, interval time.Duration) Option {
	return func(c *config) *config {
		c.retries = n
		c.interval = interval
		return c
	}
}

func WithUserAgent(ua string) Option {
	return func(c *config) *config {
		c.userAgent = ua
		return c
	}
}

func buildConfig(options []Option) *config {
	cfg := &config{
		metrics:   metrics.Default(),
		timeout:   5 * time.Minute,
		retries:   2,
		interval:  time.Second,
		userAgent: buildtime.UserAgent(),
	}
	for _, opt := range options {
		cfg = opt(cfg)
	}
	return cfg
}

// NewClient creates a client for the TAPIS tenant at baseURL, authorized by token.
//
// Unless WithUsername is given, username is read from the token.
func NewClient(baseURL string, token string, options ...Option) (Client, error) {
	cfg := buildConfig(options)

	username := cfg.username
	if username == "" {
		claims, err := auth.ParseToken(token)
		if err != nil {
			return nil, err
		}
		username = claims.Username
	}

	c, err := newClient(baseURL, cfg)
	if err != nil {
		return nil, err
	}
	c.username = username
	c.http.SetHeader(HeaderToken, token)
	return c, nil
}

func newClient(baseURL string, cfg *config) (*client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("base url is not absolute URL: %s", baseURL)
	}
	base := strings.TrimSuffix(baseURL, "/")

	var hc *resty.Client
	if cfg.httpClient != nil {
		hc = resty.NewWithClient(cfg.httpClient)
	} else {
		hc = resty.New()
	}
	hc.SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.userAgent).
		SetTimeout(cfg.timeout)

	interval := cfg.interval
	return &client{
		http:    hc,
		api:     base + "/v3",
		baseURL: base,
		metrics: cfg.metrics,
		retries: cfg.retries,
		backoff: func() retry.Backoff {
			return retry.ExponentialBackoff(interval, 2)
		},
	}, nil
}

func (c *client) Username() string {
	return c.username
}

func (c *client) BaseURL() string {
	return c.baseURL
}

// apipath joins path segments under /v3.
//
// Segments are trimmed "/" on both ends. They are expected to be escaped.
func (c *client) apipath(path ...string) string {
	path = utils.Map(path, func(p string) string {
		return strings.TrimPrefix(strings.TrimSuffix(p, "/"), "/")
	})
	path = utils.Filter(path, func(p string) bool { return p != "" })
	return strings.Join(append([]string{c.api}, path...), "/")
}

// escapePath escapes each segment of a file path, keeping "/".
//
// Segments already escaped are not escaped twice.
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	return strings.Join(utils.Map(segments, escapeSegment), "/")
}

func escapeSegment(s string) string {
	if unescaped, err := url.PathUnescape(s); err == nil {
		s = unescaped
	}
	return url.PathEscape(s)
}

func (c *client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetDoNotParseResponse(true)
}

// send executes req, and returns the raw response.
//
// GET requests are retried on transport errors and 5xx responses.
// The response of the last attempt is returned even if it is 5xx.
//
// Callers must close the body of the returned response.
func (c *client) send(req *resty.Request, method string, endpoint string, url string) (*http.Response, error) {
	ctx := req.Context()
	idempotent := method == resty.MethodGet
	attempt := 0

	return retry.Blocking(ctx, c.backoff(), func() (*http.Response, error) {
		attempt += 1
		retriable := idempotent && attempt <= c.retries

		started := time.Now()
		resp, err := req.Execute(method, url)
		if err != nil {
			c.metrics.ObserveRequest(method, endpoint, 0, time.Since(started))
			if retriable && ctx.Err() == nil {
				return nil, fmt.Errorf("%w: %w", retry.ErrRetry, err)
			}
			return nil, err
		}

		raw := resp.RawResponse
		c.metrics.ObserveRequest(method, endpoint, raw.StatusCode, time.Since(started))
		if retriable && StatusCodeRangeOf(raw) == Status5xx {
			io.Copy(io.Discard, raw.Body)
			raw.Body.Close()
			return nil, fmt.Errorf("%w: server error (status code = %d)", retry.ErrRetry, raw.StatusCode)
		}
		return raw, nil
	})
}

func join(values []string) string {
	return strings.Join(values, ",")
}
