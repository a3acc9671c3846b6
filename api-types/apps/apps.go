package apps

// input modes of arguments, env vars and file inputs
const (
	InputModeRequired         = "REQUIRED"
	InputModeFixed            = "FIXED"
	InputModeIncludeOnDemand  = "INCLUDE_ON_DEMAND"
	InputModeIncludeByDefault = "INCLUDE_BY_DEFAULT"
	InputModeOptional         = "OPTIONAL"
)

// Summary is an item of app listings.
type Summary struct {
	Id          string `json:"id"`
	Version     string `json:"version"`
	Owner       string `json:"owner"`
	Description string `json:"description,omitempty"`
}

// App is an application descriptor.
type App struct {
	Id             string        `json:"id"`
	Version        string        `json:"version"`
	Description    string        `json:"description,omitempty"`
	Owner          string        `json:"owner,omitempty"`
	Enabled        bool          `json:"enabled"`
	JobType        string        `json:"jobType,omitempty"`
	Runtime        string        `json:"runtime,omitempty"`
	ContainerImage string        `json:"containerImage,omitempty"`
	JobAttributes  JobAttributes `json:"jobAttributes"`
}

type JobAttributes struct {
	Description            string       `json:"description,omitempty"`
	ExecSystemId           string       `json:"execSystemId,omitempty"`
	ExecSystemLogicalQueue string       `json:"execSystemLogicalQueue,omitempty"`
	ArchiveSystemId        string       `json:"archiveSystemId,omitempty"`
	ArchiveSystemDir       string       `json:"archiveSystemDir,omitempty"`
	ArchiveOnAppError      *bool        `json:"archiveOnAppError,omitempty"`
	IsMpi                  *bool        `json:"isMpi,omitempty"`
	MpiCmd                 string       `json:"mpiCmd,omitempty"`
	CmdPrefix              string       `json:"cmdPrefix,omitempty"`
	NodeCount              int          `json:"nodeCount,omitempty"`
	CoresPerNode           int          `json:"coresPerNode,omitempty"`
	MemoryMB               int          `json:"memoryMB,omitempty"`
	MaxMinutes             int          `json:"maxMinutes,omitempty"`
	FileInputs             []FileInput  `json:"fileInputs,omitempty"`
	ParameterSet           ParameterSet `json:"parameterSet"`
	Tags                   []string     `json:"tags,omitempty"`
}

// FileInput is a file input declared by an app.
type FileInput struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	InputMode      string `json:"inputMode,omitempty"`
	AutoMountLocal *bool  `json:"autoMountLocal,omitempty"`
	SourceUrl      string `json:"sourceUrl,omitempty"`
	TargetPath     string `json:"targetPath,omitempty"`
}

type ParameterSet struct {
	AppArgs          []Arg      `json:"appArgs,omitempty"`
	ContainerArgs    []Arg      `json:"containerArgs,omitempty"`
	SchedulerOptions []Arg      `json:"schedulerOptions,omitempty"`
	EnvVariables     []KeyValue `json:"envVariables,omitempty"`
}

// Arg is an app argument or a scheduler option.
type Arg struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	InputMode   string `json:"inputMode,omitempty"`
	Arg         string `json:"arg,omitempty"`
}

func (a Arg) IsFixed() bool {
	return a.InputMode == InputModeFixed
}

// KeyValue is an environment variable.
type KeyValue struct {
	Key         string `json:"key"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
	InputMode   string `json:"inputMode,omitempty"`
}

func (kv KeyValue) IsFixed() bool {
	return kv.InputMode == InputModeFixed
}
