// Package tapisfake serves an in-memory TAPIS for tests.
//
// It knows just enough of the API for the client in pkg/tapis.
package tapisfake

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	apifiles "github.com/designsafe-ci/dapi/api-types/files"
	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	"github.com/designsafe-ci/dapi/api-types/misc/tapistime"
	apisystems "github.com/designsafe-ci/dapi/api-types/systems"
	apitokens "github.com/designsafe-ci/dapi/api-types/tokens"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Server struct {
	URL string

	Username string
	Password string

	// access token issued by POST /v3/oauth2/tokens, and required for other endpoints.
	AccessToken string

	// statuses each job goes through, one step per status poll.
	Statuses []string

	mu        sync.Mutex
	apps      map[string]apiapps.App
	systems   map[string]apisystems.System
	files     map[string][]byte
	jobs      map[string]*job
	submitted []apijobs.Request
}

type job struct {
	apijobs.Job
	step    int
	history []apijobs.HistoryEvent
}

// New starts a fake server. It is closed when the test ends.
func New(t *testing.T) *Server {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"tapis/username":  "testuser",
		"tapis/tenant_id": "designsafe",
		"exp":             time.Now().Add(4 * time.Hour).Unix(),
	}).SignedString([]byte("fake"))
	if err != nil {
		t.Fatal(err)
	}

	s := &Server{
		Username:    "testuser",
		Password:    "testpass",
		AccessToken: token,
		Statuses:    []string{"PENDING", "QUEUED", "RUNNING", "FINISHED"},
		apps:        map[string]apiapps.App{},
		systems:     map[string]apisystems.System{},
		files:       map[string][]byte{},
		jobs:        map[string]*job{},
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
		}
		failure(c, code, err.Error())
	}

	e.POST("/v3/oauth2/tokens", s.createToken)

	v3 := e.Group("/v3", s.authorize)
	v3.GET("/apps", s.listApps)
	v3.GET("/apps/:id", s.getApp)
	v3.GET("/apps/:id/:version", s.getApp)
	v3.POST("/jobs/submit", s.submitJob)
	v3.GET("/jobs/:uuid", s.getJob)
	v3.GET("/jobs/:uuid/status", s.getJobStatus)
	v3.GET("/jobs/:uuid/history", s.getJobHistory)
	v3.POST("/jobs/:uuid/cancel", s.cancelJob)
	v3.GET("/files/ops/:system/*", s.listFiles)
	v3.POST("/files/ops/:system/*", s.insertFile)
	v3.GET("/files/content/:system/*", s.getFileContents)
	v3.GET("/systems/:id", s.getSystem)

	hs := httptest.NewServer(e)
	t.Cleanup(hs.Close)
	s.URL = hs.URL
	return s
}

func success(c echo.Context, result any) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "success", "message": "ok", "result": result, "version": "fake",
	})
}

func failure(c echo.Context, code int, message string) error {
	return c.JSON(code, map[string]any{
		"status": "error", "message": message, "version": "fake",
	})
}

func (s *Server) authorize(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Request().Header.Get("X-Tapis-Token") != s.AccessToken {
			return failure(c, http.StatusUnauthorized, "TAPIS_SECURITY_MISSING_JWT")
		}
		return next(c)
	}
}

// PutApp registers an app.
func (s *Server) PutApp(app apiapps.App) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps[app.Id] = app
}

// PutSystem registers a system.
func (s *Server) PutSystem(sys apisystems.System) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.systems[sys.Id] = sys
}

// PutFile places a file at "<system>/<path>".
func (s *Server) PutFile(system string, p string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key(system, p)] = content
}

// File returns content at "<system>/<path>".
func (s *Server) File(system string, p string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.files[key(system, p)]
	return b, ok
}

// Submitted returns job requests received so far.
func (s *Server) Submitted() []apijobs.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apijobs.Request{}, s.submitted...)
}

func key(system string, p string) string {
	return system + "/" + strings.Trim(path.Clean("/"+p), "/")
}

func (s *Server) createToken(c echo.Context) error {
	req := apitokens.Request{}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return failure(c, http.StatusBadRequest, "malformed request")
	}
	if req.Username != s.Username || req.Password != s.Password {
		return failure(c, http.StatusUnauthorized, "invalid username/password combination")
	}
	return success(c, apitokens.Result{AccessToken: apitokens.Token{
		AccessToken: s.AccessToken,
		ExpiresIn:   14400,
	}})
}

// listApps understands searches only in the form "(id.like.*<term>*)".
func (s *Server) listApps(c echo.Context) error {
	term := c.QueryParam("search")
	term = strings.TrimPrefix(term, "(id.like.*")
	term = strings.TrimSuffix(term, "*)")

	s.mu.Lock()
	defer s.mu.Unlock()
	found := []apiapps.Summary{}
	for _, app := range s.apps {
		if strings.Contains(app.Id, term) {
			found = append(found, apiapps.Summary{Id: app.Id, Version: app.Version, Owner: app.Owner})
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].Id < found[j].Id })
	return success(c, found)
}

func (s *Server) getApp(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	app, ok := s.apps[c.Param("id")]
	if !ok || (c.Param("version") != "" && c.Param("version") != app.Version) {
		return failure(c, http.StatusNotFound, "app not found")
	}
	return success(c, app)
}

func (s *Server) submitJob(c echo.Context) error {
	req := apijobs.Request{}
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return failure(c, http.StatusBadRequest, "malformed request")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[req.AppId]; !ok {
		return failure(c, http.StatusBadRequest, "app not found: "+req.AppId)
	}
	s.submitted = append(s.submitted, req)

	now := tapistime.Time(time.Now().UTC())
	j := &job{Job: apijobs.Job{
		Uuid:             uuid.NewString() + "-007",
		Name:             req.Name,
		Owner:            s.Username,
		Status:           s.Statuses[0],
		Created:          now,
		LastUpdated:      now,
		AppId:            req.AppId,
		AppVersion:       req.AppVersion,
		ExecSystemId:     req.ExecSystemId,
		ArchiveSystemId:  req.ArchiveSystemId,
		ArchiveSystemDir: strings.ReplaceAll(req.ArchiveSystemDir, "${EffectiveUserId}", s.Username),
		MaxMinutes:       req.MaxMinutes,
	}}
	j.record()
	s.jobs[j.Uuid] = j
	return success(c, j.Job)
}

func (j *job) record() {
	j.history = append(j.history, apijobs.HistoryEvent{
		Event:       "JOB_NEW_STATUS",
		EventDetail: j.Status,
		Created:     tapistime.Time(time.Now().UTC()).String(),
	})
}

func (s *Server) lookupJob(c echo.Context) (*job, bool) {
	j, ok := s.jobs[c.Param("uuid")]
	return j, ok
}

func (s *Server) getJob(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.lookupJob(c)
	if !ok {
		return failure(c, http.StatusNotFound, "job not found")
	}
	return success(c, j.Job)
}

func (s *Server) getJobStatus(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.lookupJob(c)
	if !ok {
		return failure(c, http.StatusNotFound, "job not found")
	}
	if j.Status != "CANCELLED" && j.step+1 < len(s.Statuses) {
		j.step += 1
		j.Status = s.Statuses[j.step]
		j.record()
	}
	return success(c, apijobs.StatusResult{Status: j.Status})
}

func (s *Server) getJobHistory(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.lookupJob(c)
	if !ok {
		return failure(c, http.StatusNotFound, "job not found")
	}
	return success(c, j.history)
}

func (s *Server) cancelJob(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.lookupJob(c)
	if !ok {
		return failure(c, http.StatusNotFound, "job not found")
	}
	switch j.Status {
	case "FINISHED", "FAILED", "CANCELLED", "STOPPED":
		return failure(c, http.StatusBadRequest, "job is already in a terminal state")
	}
	j.Status = "CANCELLED"
	j.record()
	return success(c, map[string]any{"message": "cancel requested"})
}

func (s *Server) listFiles(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	system := c.Param("system")
	target := key(system, c.Param("*"))
	found := []apifiles.FileInfo{}
	for k, content := range s.files {
		if k == target {
			found = append(found, fileInfo(k, system, content))
			continue
		}
		if rest, ok := strings.CutPrefix(k, target+"/"); ok && !strings.Contains(rest, "/") {
			found = append(found, fileInfo(k, system, content))
		}
	}
	if len(found) == 0 {
		return failure(c, http.StatusNotFound, "path not found")
	}
	return success(c, found)
}

func fileInfo(k string, system string, content []byte) apifiles.FileInfo {
	p := strings.TrimPrefix(k, system+"/")
	return apifiles.FileInfo{
		Name: path.Base(p),
		Path: p,
		Type: "file",
		Size: int64(len(content)),
		Url:  "tapis://" + k,
	}
}

func (s *Server) getFileContents(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := key(c.Param("system"), c.Param("*"))
	if c.QueryParam("zip") == "true" {
		return s.zipContents(c, target)
	}
	content, ok := s.files[target]
	if !ok {
		return failure(c, http.StatusNotFound, "file not found")
	}
	return c.Blob(http.StatusOK, "application/octet-stream", content)
}

// zipContents sends files under target as a zip archive, named relative to target.
func (s *Server) zipContents(c echo.Context, target string) error {
	names := []string{}
	for k := range s.files {
		if strings.HasPrefix(k, target+"/") {
			names = append(names, k)
		}
	}
	if len(names) == 0 {
		return failure(c, http.StatusNotFound, "directory not found")
	}
	sort.Strings(names)

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, k := range names {
		w, err := zw.Create(strings.TrimPrefix(k, target+"/"))
		if err != nil {
			return err
		}
		if _, err := w.Write(s.files[k]); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/zip", buf.Bytes())
}

func (s *Server) insertFile(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return failure(c, http.StatusBadRequest, "no file in request")
	}
	f, err := fh.Open()
	if err != nil {
		return err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key(c.Param("system"), c.Param("*"))] = content
	return success(c, nil)
}

func (s *Server) getSystem(c echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sys, ok := s.systems[c.Param("id")]
	if !ok {
		return failure(c, http.StatusNotFound, "system not found")
	}
	return success(c, sys)
}
