package jobs

import (
	"github.com/designsafe-ci/dapi/api-types/misc/tapistime"
)

// Request is the body of job submission.
//
// Empty fields are omitted, letting TAPIS apply app defaults.
type Request struct {
	Name                   string        `json:"name"`
	AppId                  string        `json:"appId"`
	AppVersion             string        `json:"appVersion"`
	Description            string        `json:"description,omitempty"`
	Tags                   []string      `json:"tags,omitempty"`
	ExecSystemId           string        `json:"execSystemId,omitempty"`
	ExecSystemLogicalQueue string        `json:"execSystemLogicalQueue,omitempty"`
	ArchiveSystemId        string        `json:"archiveSystemId,omitempty"`
	ArchiveSystemDir       string        `json:"archiveSystemDir,omitempty"`
	ArchiveOnAppError      *bool         `json:"archiveOnAppError,omitempty"`
	NodeCount              int           `json:"nodeCount,omitempty"`
	CoresPerNode           int           `json:"coresPerNode,omitempty"`
	MemoryMB               int           `json:"memoryMB,omitempty"`
	MaxMinutes             int           `json:"maxMinutes,omitempty"`
	IsMpi                  *bool         `json:"isMpi,omitempty"`
	CmdPrefix              string        `json:"cmdPrefix,omitempty"`
	FileInputs             []FileInput   `json:"fileInputs,omitempty"`
	ParameterSet           *ParameterSet `json:"parameterSet,omitempty"`
}

type FileInput struct {
	Name           string `json:"name,omitempty"`
	Description    string `json:"description,omitempty"`
	SourceUrl      string `json:"sourceUrl"`
	TargetPath     string `json:"targetPath,omitempty"`
	AutoMountLocal *bool  `json:"autoMountLocal,omitempty"`
}

type ParameterSet struct {
	AppArgs          []Arg    `json:"appArgs,omitempty"`
	ContainerArgs    []Arg    `json:"containerArgs,omitempty"`
	SchedulerOptions []Arg    `json:"schedulerOptions,omitempty"`
	EnvVariables     []EnvVar `json:"envVariables,omitempty"`
}

// IsEmpty is true when all lists are empty.
func (ps ParameterSet) IsEmpty() bool {
	return len(ps.AppArgs) == 0 && len(ps.ContainerArgs) == 0 &&
		len(ps.SchedulerOptions) == 0 && len(ps.EnvVariables) == 0
}

// Arg is an app argument, container argument or scheduler option of a job.
type Arg struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Include     *bool  `json:"include,omitempty"`
	Arg         string `json:"arg"`
}

type EnvVar struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
	Include     *bool  `json:"include,omitempty"`
}

// Job is a job known by TAPIS.
type Job struct {
	Uuid                   string         `json:"uuid"`
	Name                   string         `json:"name"`
	Owner                  string         `json:"owner,omitempty"`
	Tenant                 string         `json:"tenant,omitempty"`
	Description            string         `json:"description,omitempty"`
	Status                 string         `json:"status"`
	LastMessage            string         `json:"lastMessage,omitempty"`
	Condition              string         `json:"condition,omitempty"`
	Created                tapistime.Time `json:"created"`
	Ended                  tapistime.Time `json:"ended"`
	LastUpdated            tapistime.Time `json:"lastUpdated"`
	AppId                  string         `json:"appId"`
	AppVersion             string         `json:"appVersion"`
	ExecSystemId           string         `json:"execSystemId,omitempty"`
	ExecSystemLogicalQueue string         `json:"execSystemLogicalQueue,omitempty"`
	ExecSystemExecDir      string         `json:"execSystemExecDir,omitempty"`
	ArchiveSystemId        string         `json:"archiveSystemId,omitempty"`
	ArchiveSystemDir       string         `json:"archiveSystemDir,omitempty"`
	RemoteJobId            string         `json:"remoteJobId,omitempty"`
	NodeCount              int            `json:"nodeCount,omitempty"`
	CoresPerNode           int            `json:"coresPerNode,omitempty"`
	MemoryMB               int            `json:"memoryMB,omitempty"`
	MaxMinutes             int            `json:"maxMinutes,omitempty"`
}

// StatusResult is the result of GET /v3/jobs/{uuid}/status.
type StatusResult struct {
	Status string `json:"status"`
}

// HistoryEvent is an item of GET /v3/jobs/{uuid}/history.
//
// Created is kept as is, since TAPIS is not strict about its format.
type HistoryEvent struct {
	Event       string `json:"event"`
	EventDetail string `json:"eventDetail"`
	Created     string `json:"created"`
	Description string `json:"description,omitempty"`
}
