package jobs

import (
	"context"
	"fmt"
	"strings"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/files"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/utils/pointer"
	"go.uber.org/zap"
)

// defaults of RequestParams
var (
	DefaultScriptParamNames    = []string{"Input Script", "Main Script", "tclScript"}
	DefaultInputDirParamName   = "Input Directory"
	DefaultAllocationParamName = "TACC Allocation"
)

const (
	// ArchiveDesignSafe is the shorthand of the DesignSafe default storage as archive system.
	ArchiveDesignSafe = "designsafe"

	// DefaultArchivePath is the directory under the user's home where DesignSafe archives go.
	DefaultArchivePath = "tapis-jobs-archive"

	jobNameTimeFormat = "20060102_150405"
)

// RequestParams are the caller's inputs of GenerateRequest.
//
// Zero values mean "not given". Numeric overrides must not be negative.
type RequestParams struct {
	AppId      string
	AppVersion string

	// tapis:// URI of the directory staged as the main file input.
	InputDirURI string

	// filename of the script, relative to the input directory.
	//
	// When empty, no script slot is filled.
	ScriptFilename string

	JobName     string
	Description string
	Tags        []string

	MaxMinutes   int
	NodeCount    int
	CoresPerNode int
	MemoryMB     int
	Queue        string
	Allocation   string

	// "designsafe", other system id, or empty for the app's default.
	ArchiveSystem string
	ArchivePath   string

	ExtraFileInputs       []apijobs.FileInput
	ExtraAppArgs          []apijobs.Arg
	ExtraEnvVariables     []apijobs.EnvVar
	ExtraSchedulerOptions []apijobs.Arg

	// names of the app argument or env var receiving ScriptFilename, in preference order.
	//
	// Empty means DefaultScriptParamNames.
	ScriptParamNames    []string
	InputDirParamName   string
	AllocationParamName string

	// do not check that InputDirURI exists.
	SkipInputCheck bool
}

func (p RequestParams) validate() error {
	if strings.TrimSpace(p.AppId) == "" {
		return fmt.Errorf("%w: app id is empty", derr.ErrInvalidOverride)
	}
	for name, v := range map[string]int{
		"maxMinutes":   p.MaxMinutes,
		"nodeCount":    p.NodeCount,
		"coresPerNode": p.CoresPerNode,
		"memoryMB":     p.MemoryMB,
	} {
		if v < 0 {
			return fmt.Errorf("%w: %s should not be negative: %d", derr.ErrInvalidOverride, name, v)
		}
	}
	if p.InputDirURI == "" {
		return fmt.Errorf("%w: input directory is required", derr.ErrInvalidOverride)
	}
	if !strings.HasPrefix(p.InputDirURI, files.Scheme) {
		return fmt.Errorf(
			"%w: input directory should be a %s URI: %s",
			derr.ErrInvalidOverride, files.Scheme, p.InputDirURI,
		)
	}
	return nil
}

func (p RequestParams) withDefaults() RequestParams {
	if len(p.ScriptParamNames) == 0 {
		p.ScriptParamNames = DefaultScriptParamNames
	}
	if p.InputDirParamName == "" {
		p.InputDirParamName = DefaultInputDirParamName
	}
	if p.AllocationParamName == "" {
		p.AllocationParamName = DefaultAllocationParamName
	}
	return p
}

// GenerateRequest builds a job request from the app's declaration and params.
//
// Except the default job name, the result depends only on params and the app.
//
// # Errors
//
// - derr.ErrInvalidOverride: params are malformed.
//
// - derr.ErrAppNotFound: the app does not exist or is disabled.
//
// - derr.ErrFileOperation: the input directory cannot be found.
//
// - derr.ErrNoScriptSlot: the app has no argument to receive the script.
func (j *Jobs) GenerateRequest(ctx context.Context, params RequestParams) (apijobs.Request, error) {
	if err := params.validate(); err != nil {
		return apijobs.Request{}, err
	}
	params = params.withDefaults()
	logger := log.Named(log.Jobs)

	app, err := j.apps.Details(ctx, params.AppId, params.AppVersion)
	if err != nil {
		return apijobs.Request{}, err
	}
	if !app.Enabled {
		return apijobs.Request{}, fmt.Errorf("%w: app '%s' is disabled", derr.ErrAppNotFound, app.Id)
	}

	if !params.SkipInputCheck {
		if err := j.checkInput(ctx, params.InputDirURI); err != nil {
			return apijobs.Request{}, err
		}
	}

	attrs := app.JobAttributes
	req := apijobs.Request{
		Name:                   params.JobName,
		AppId:                  app.Id,
		AppVersion:             app.Version,
		Description:            params.Description,
		Tags:                   params.Tags,
		ExecSystemId:           attrs.ExecSystemId,
		ExecSystemLogicalQueue: attrs.ExecSystemLogicalQueue,
		ArchiveSystemId:        attrs.ArchiveSystemId,
		ArchiveOnAppError:      pointer.Ref(true),
		NodeCount:              attrs.NodeCount,
		CoresPerNode:           attrs.CoresPerNode,
		MemoryMB:               attrs.MemoryMB,
		MaxMinutes:             attrs.MaxMinutes,
		IsMpi:                  attrs.IsMpi,
		CmdPrefix:              attrs.CmdPrefix,
	}
	if req.Name == "" {
		req.Name = fmt.Sprintf("%s-%s", app.Id, j.now().Format(jobNameTimeFormat))
	}
	if req.Description == "" {
		req.Description = attrs.Description
	}
	if req.Description == "" {
		req.Description = app.Description
	}
	if req.Description == "" {
		req.Description = "dapi job for " + app.Id
	}
	if attrs.ArchiveOnAppError != nil {
		req.ArchiveOnAppError = attrs.ArchiveOnAppError
	}

	if params.Queue != "" {
		req.ExecSystemLogicalQueue = params.Queue
	}
	if params.NodeCount > 0 {
		req.NodeCount = params.NodeCount
	}
	if params.CoresPerNode > 0 {
		req.CoresPerNode = params.CoresPerNode
	}
	if params.MemoryMB > 0 {
		req.MemoryMB = params.MemoryMB
	}
	if params.MaxMinutes > 0 {
		req.MaxMinutes = params.MaxMinutes
	}

	req.FileInputs = append(
		[]apijobs.FileInput{mainInput(attrs.FileInputs, params)},
		params.ExtraFileInputs...,
	)

	ps := apijobs.ParameterSet{}
	if params.ScriptFilename != "" {
		slot, ok := findScriptSlot(attrs.ParameterSet, params.ScriptParamNames)
		if !ok {
			return apijobs.Request{}, fmt.Errorf(
				"%w: app '%s' declares none of %v as argument or environment variable",
				derr.ErrNoScriptSlot, app.Id, params.ScriptParamNames,
			)
		}
		logger.Debug("script slot", zap.String("name", slot.name), zap.Bool("env", slot.env))
		if slot.env {
			ps.EnvVariables = append(ps.EnvVariables, apijobs.EnvVar{Key: slot.name, Value: params.ScriptFilename})
		} else {
			ps.AppArgs = append(ps.AppArgs, apijobs.Arg{Name: slot.name, Arg: params.ScriptFilename})
		}
		params.ExtraAppArgs = dropNamed(params.ExtraAppArgs, slot, logger)
		params.ExtraEnvVariables = dropKeyed(params.ExtraEnvVariables, slot, logger)
	}
	ps.AppArgs = append(ps.AppArgs, params.ExtraAppArgs...)
	ps.EnvVariables = append(ps.EnvVariables, params.ExtraEnvVariables...)

	fixed := fixedSchedulerOptions(attrs.ParameterSet.SchedulerOptions)
	if params.Allocation != "" {
		if fixed[params.AllocationParamName] {
			logger.Warn(
				"allocation is fixed by the app, ignored",
				zap.String("app", app.Id), zap.String("allocation", params.Allocation),
			)
		} else {
			ps.SchedulerOptions = append(ps.SchedulerOptions, apijobs.Arg{
				Name: params.AllocationParamName,
				Arg:  "-A " + params.Allocation,
			})
		}
	}
	for _, opt := range params.ExtraSchedulerOptions {
		if opt.Name != "" && fixed[opt.Name] {
			logger.Warn("scheduler option is fixed by the app, ignored", zap.String("name", opt.Name))
			continue
		}
		ps.SchedulerOptions = append(ps.SchedulerOptions, opt)
	}
	if !ps.IsEmpty() {
		req.ParameterSet = &ps
	}

	req.ArchiveSystemId, req.ArchiveSystemDir = archiveOf(params, attrs.ArchiveSystemId)

	return req, nil
}

func (j *Jobs) checkInput(ctx context.Context, uri string) error {
	system, p, err := files.ParseURI(uri)
	if err != nil {
		return err
	}
	if _, err := j.client.ListFiles(ctx, system, p, 1, 0); err != nil {
		return derr.Wrap(derr.ErrFileOperation, err, "input directory is not reachable: %s", uri)
	}
	return nil
}

func mainInput(declared []apiapps.FileInput, params RequestParams) apijobs.FileInput {
	in := apijobs.FileInput{
		Name:           params.InputDirParamName,
		SourceUrl:      params.InputDirURI,
		AutoMountLocal: pointer.Ref(true),
	}
	for _, fi := range declared {
		if !strings.EqualFold(fi.Name, params.InputDirParamName) {
			continue
		}
		in.TargetPath = fi.TargetPath
		if fi.AutoMountLocal != nil {
			in.AutoMountLocal = fi.AutoMountLocal
		}
		break
	}
	return in
}

type scriptSlot struct {
	name string
	env  bool
}

func findScriptSlot(ps apiapps.ParameterSet, names []string) (scriptSlot, bool) {
	for _, name := range names {
		for _, a := range ps.AppArgs {
			if a.Name == name && !a.IsFixed() {
				return scriptSlot{name: a.Name}, true
			}
		}
	}
	for _, name := range names {
		for _, kv := range ps.EnvVariables {
			if kv.Key == name && !kv.IsFixed() {
				return scriptSlot{name: kv.Key, env: true}, true
			}
		}
	}

	for _, a := range ps.AppArgs {
		if !a.IsFixed() && strings.Contains(strings.ToLower(a.Name), "script") {
			return scriptSlot{name: a.Name}, true
		}
	}
	for _, kv := range ps.EnvVariables {
		if !kv.IsFixed() && strings.Contains(strings.ToLower(kv.Key), "script") {
			return scriptSlot{name: kv.Key, env: true}, true
		}
	}
	return scriptSlot{}, false
}

func dropNamed(args []apijobs.Arg, slot scriptSlot, logger *zap.Logger) []apijobs.Arg {
	if slot.env {
		return args
	}
	kept := make([]apijobs.Arg, 0, len(args))
	for _, a := range args {
		if a.Name == slot.name {
			logger.Warn("app argument duplicates the script slot, dropped", zap.String("name", a.Name))
			continue
		}
		kept = append(kept, a)
	}
	return kept
}

func dropKeyed(envs []apijobs.EnvVar, slot scriptSlot, logger *zap.Logger) []apijobs.EnvVar {
	if !slot.env {
		return envs
	}
	kept := make([]apijobs.EnvVar, 0, len(envs))
	for _, e := range envs {
		if e.Key == slot.name {
			logger.Warn("environment variable duplicates the script slot, dropped", zap.String("key", e.Key))
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

func fixedSchedulerOptions(opts []apiapps.Arg) map[string]bool {
	fixed := map[string]bool{}
	for _, o := range opts {
		if o.IsFixed() && o.Name != "" {
			fixed[o.Name] = true
		}
	}
	return fixed
}

// archiveOf returns archiveSystemId and archiveSystemDir of the request.
func archiveOf(params RequestParams, appDefault string) (string, string) {
	switch params.ArchiveSystem {
	case "":
		// dir only: the app's archive system with the given dir
		return appDefault, params.ArchivePath
	case ArchiveDesignSafe:
		if strings.Contains(params.ArchivePath, "${") {
			return files.SystemMyData, params.ArchivePath
		}
		dir := strings.Trim(params.ArchivePath, "/")
		if dir == "" {
			dir = DefaultArchivePath
		}
		return files.SystemMyData, "${EffectiveUserId}/" + dir + "/${JobCreateDate}/${JobUUID}"
	default:
		return params.ArchiveSystem, params.ArchivePath
	}
}
