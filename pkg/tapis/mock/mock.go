package mock

import (
	"bytes"
	"context"
	"io"
	"testing"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	apifiles "github.com/designsafe-ci/dapi/api-types/files"
	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	apisystems "github.com/designsafe-ci/dapi/api-types/systems"
	"github.com/designsafe-ci/dapi/pkg/tapis"
)

type GetAppArgs struct {
	AppId   string
	Version string
}

type ListFilesArgs struct {
	SystemId string
	Path     string
	Limit    int
	Offset   int
}

type GetFileContentsArgs struct {
	SystemId string
	Path     string
	Zip      bool
}

type InsertFileArgs struct {
	SystemId string
	Path     string

	// content read from the passed reader.
	Content []byte
}

func New(t *testing.T) *MockClient {
	return &MockClient{t: t, Username_: "testuser", BaseURL_: "https://tapis.example.com"}
}

type MockClient struct {
	t *testing.T

	Username_ string
	BaseURL_  string

	Impl struct {
		GetApps         func(ctx context.Context, query tapis.AppQuery) ([]apiapps.Summary, error)
		GetApp          func(ctx context.Context, appId string, version string) (apiapps.App, error)
		SubmitJob       func(ctx context.Context, request apijobs.Request) (apijobs.Job, error)
		GetJob          func(ctx context.Context, jobUuid string) (apijobs.Job, error)
		GetJobStatus    func(ctx context.Context, jobUuid string) (string, error)
		GetJobHistory   func(ctx context.Context, jobUuid string) ([]apijobs.HistoryEvent, error)
		CancelJob       func(ctx context.Context, jobUuid string) error
		ListFiles       func(ctx context.Context, systemId string, path string, limit int, offset int) ([]apifiles.FileInfo, error)
		GetFileContents func(ctx context.Context, systemId string, path string, zip bool, handler func(io.Reader) error) error
		InsertFile      func(ctx context.Context, systemId string, path string, content io.Reader) error
		GetSystems      func(ctx context.Context, query tapis.SystemQuery) ([]apisystems.System, error)
		GetSystem       func(ctx context.Context, systemId string) (apisystems.System, error)
	}

	Calls struct {
		GetApps         []tapis.AppQuery
		GetApp          []GetAppArgs
		SubmitJob       []apijobs.Request
		GetJob          []string
		GetJobStatus    []string
		GetJobHistory   []string
		CancelJob       []string
		ListFiles       []ListFilesArgs
		GetFileContents []GetFileContentsArgs
		InsertFile      []InsertFileArgs
		GetSystems      []tapis.SystemQuery
		GetSystem       []string
	}
}

var _ tapis.Client = &MockClient{}

func (m *MockClient) Username() string {
	return m.Username_
}

func (m *MockClient) BaseURL() string {
	return m.BaseURL_
}

func (m *MockClient) GetApps(ctx context.Context, query tapis.AppQuery) ([]apiapps.Summary, error) {
	m.t.Helper()

	m.Calls.GetApps = append(m.Calls.GetApps, query)
	if m.Impl.GetApps == nil {
		m.t.Fatal("GetApps is not ready to be called")
	}
	return m.Impl.GetApps(ctx, query)
}

func (m *MockClient) GetApp(ctx context.Context, appId string, version string) (apiapps.App, error) {
	m.t.Helper()

	m.Calls.GetApp = append(m.Calls.GetApp, GetAppArgs{AppId: appId, Version: version})
	if m.Impl.GetApp == nil {
		m.t.Fatal("GetApp is not ready to be called")
	}
	return m.Impl.GetApp(ctx, appId, version)
}

func (m *MockClient) SubmitJob(ctx context.Context, request apijobs.Request) (apijobs.Job, error) {
	m.t.Helper()

	m.Calls.SubmitJob = append(m.Calls.SubmitJob, request)
	if m.Impl.SubmitJob == nil {
		m.t.Fatal("SubmitJob is not ready to be called")
	}
	return m.Impl.SubmitJob(ctx, request)
}

func (m *MockClient) GetJob(ctx context.Context, jobUuid string) (apijobs.Job, error) {
	m.t.Helper()

	m.Calls.GetJob = append(m.Calls.GetJob, jobUuid)
	if m.Impl.GetJob == nil {
		m.t.Fatal("GetJob is not ready to be called")
	}
	return m.Impl.GetJob(ctx, jobUuid)
}

func (m *MockClient) GetJobStatus(ctx context.Context, jobUuid string) (string, error) {
	m.t.Helper()

	m.Calls.GetJobStatus = append(m.Calls.GetJobStatus, jobUuid)
	if m.Impl.GetJobStatus == nil {
		m.t.Fatal("GetJobStatus is not ready to be called")
	}
	return m.Impl.GetJobStatus(ctx, jobUuid)
}

func (m *MockClient) GetJobHistory(ctx context.Context, jobUuid string) ([]apijobs.HistoryEvent, error) {
	m.t.Helper()

	m.Calls.GetJobHistory = append(m.Calls.GetJobHistory, jobUuid)
	if m.Impl.GetJobHistory == nil {
		m.t.Fatal("GetJobHistory is not ready to be called")
	}
	return m.Impl.GetJobHistory(ctx, jobUuid)
}

func (m *MockClient) CancelJob(ctx context.Context, jobUuid string) error {
	m.t.Helper()

	m.Calls.CancelJob = append(m.Calls.CancelJob, jobUuid)
	if m.Impl.CancelJob == nil {
		m.t.Fatal("CancelJob is not ready to be called")
	}
	return m.Impl.CancelJob(ctx, jobUuid)
}

func (m *MockClient) ListFiles(ctx context.Context, systemId string, path string, limit int, offset int) ([]apifiles.FileInfo, error) {
	m.t.Helper()

	m.Calls.ListFiles = append(m.Calls.ListFiles, ListFilesArgs{
		SystemId: systemId, Path: path, Limit: limit, Offset: offset,
	})
	if m.Impl.ListFiles == nil {
		m.t.Fatal("ListFiles is not ready to be called")
	}
	return m.Impl.ListFiles(ctx, systemId, path, limit, offset)
}

func (m *MockClient) GetFileContents(ctx context.Context, systemId string, path string, zip bool, handler func(io.Reader) error) error {
	m.t.Helper()

	m.Calls.GetFileContents = append(m.Calls.GetFileContents, GetFileContentsArgs{
		SystemId: systemId, Path: path, Zip: zip,
	})
	if m.Impl.GetFileContents == nil {
		m.t.Fatal("GetFileContents is not ready to be called")
	}
	return m.Impl.GetFileContents(ctx, systemId, path, zip, handler)
}

// InsertFile records the whole content, and passes a reader of it to Impl.
func (m *MockClient) InsertFile(ctx context.Context, systemId string, path string, content io.Reader) error {
	m.t.Helper()

	buf, err := io.ReadAll(content)
	if err != nil {
		m.t.Fatal(err)
	}
	m.Calls.InsertFile = append(m.Calls.InsertFile, InsertFileArgs{
		SystemId: systemId, Path: path, Content: buf,
	})
	if m.Impl.InsertFile == nil {
		m.t.Fatal("InsertFile is not ready to be called")
	}
	return m.Impl.InsertFile(ctx, systemId, path, bytes.NewReader(buf))
}

func (m *MockClient) GetSystems(ctx context.Context, query tapis.SystemQuery) ([]apisystems.System, error) {
	m.t.Helper()

	m.Calls.GetSystems = append(m.Calls.GetSystems, query)
	if m.Impl.GetSystems == nil {
		m.t.Fatal("GetSystems is not ready to be called")
	}
	return m.Impl.GetSystems(ctx, query)
}

func (m *MockClient) GetSystem(ctx context.Context, systemId string) (apisystems.System, error) {
	m.t.Helper()

	m.Calls.GetSystem = append(m.Calls.GetSystem, systemId)
	if m.Impl.GetSystem == nil {
		m.t.Fatal("GetSystem is not ready to be called")
	}
	return m.Impl.GetSystem(ctx, systemId)
}
