package files

import (
	"context"
	"fmt"
	"strings"

	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const Scheme = "tapis://"

// storage systems of DesignSafe
const (
	SystemMyData    = "designsafe.storage.default"
	SystemCommunity = "designsafe.storage.community"

	// project systems are named "project-<uuid of the project>".
	ProjectSystemPrefix = "project-"
)

// mount points in DesignSafe JupyterHub
const (
	LocalMyData     = "/home/jupyter/MyData"
	LocalCommunity  = "/home/jupyter/CommunityData"
	LocalMyProjects = "/home/jupyter/MyProjects"
)

// forms of paths, checked in order.
var (
	myDataForms = []string{
		"/home/jupyter/MyData", "/home/jupyter/mydata",
		"jupyter/MyData", "jupyter/mydata",
		"/data/MyData",
		"/MyData", "/mydata",
		"MyData", "mydata",
	}
	communityForms = []string{
		"/home/jupyter/CommunityData",
		"jupyter/CommunityData",
		"/CommunityData",
		"CommunityData",
	}
	projectForms = []string{
		"/home/jupyter/MyProjects",
		"jupyter/MyProjects", "jupyter/projects",
		"/MyProjects", "/projects",
		"MyProjects", "projects",
	}
)

// URI builds "tapis://<system>/<path>".
func URI(system string, path string) string {
	return Scheme + system + "/" + strings.TrimLeft(path, "/")
}

// ParseURI splits a tapis URI into system id and path.
//
// The path has no leading "/", and is returned as written (no unescaping).
func ParseURI(uri string) (system string, path string, err error) {
	rest, ok := strings.CutPrefix(uri, Scheme)
	if !ok {
		return "", "", fmt.Errorf("%w: invalid tapis URI '%s': must start with '%s'", derr.ErrFileOperation, uri, Scheme)
	}
	system, path, _ = strings.Cut(rest, "/")
	if system == "" {
		return "", "", fmt.Errorf("%w: invalid tapis URI '%s': missing system id", derr.ErrFileOperation, uri)
	}
	return system, strings.TrimLeft(path, "/"), nil
}

// cutForm returns the rest of path following one of forms.
func cutForm(path string, forms []string) (string, bool) {
	for _, form := range forms {
		if path == form {
			return "", true
		}
		if rest, ok := strings.CutPrefix(path, form+"/"); ok {
			return strings.TrimLeft(rest, "/"), true
		}
	}
	return "", false
}

// TranslatePathToURI translates a DesignSafe path into a tapis URI.
//
// Recognized paths are MyData, CommunityData and MyProjects, in the forms
// seen in JupyterHub ("/home/jupyter/MyData/..."), relative ("MyData/...") or
// rooted ("/MyData/..."). tapis URIs are returned as they are.
//
// When verify is true, the translated location is listed to check that it exists.
func (f *Files) TranslatePathToURI(ctx context.Context, path string, verify bool) (string, error) {
	uri, err := f.translate(ctx, strings.TrimSpace(path))
	if err != nil {
		return "", err
	}
	logger := log.Named(log.Files)
	logger.Debug("path translated", zap.String("path", path), zap.String("uri", uri))

	if verify {
		system, remote, err := ParseURI(uri)
		if err != nil {
			return "", err
		}
		if _, err := f.client.ListFiles(ctx, system, remote, 1, 0); err != nil {
			return "", derr.Wrap(derr.ErrFileOperation, err, "translated path '%s' does not exist or is not accessible", uri)
		}
	}
	return uri, nil
}

func (f *Files) translate(ctx context.Context, path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", derr.ErrFileOperation)
	}
	if strings.HasPrefix(path, Scheme) {
		return path, nil
	}

	if rest, ok := cutForm(path, myDataForms); ok {
		username := f.client.Username()
		if username == "" {
			return "", fmt.Errorf("%w: username is required to translate MyData path", derr.ErrAuthentication)
		}
		if rest == "" {
			return URI(SystemMyData, username), nil
		}
		return URI(SystemMyData, username+"/"+rest), nil
	}

	if rest, ok := cutForm(path, communityForms); ok {
		return URI(SystemCommunity, rest), nil
	}

	if rest, ok := cutForm(path, projectForms); ok {
		projectId, inProject, _ := strings.Cut(rest, "/")
		if projectId == "" {
			return "", fmt.Errorf("%w: project path '%s' has no project id", derr.ErrFileOperation, path)
		}
		system, err := f.findProjectSystem(ctx, projectId)
		if err != nil {
			return "", err
		}
		return URI(system, inProject), nil
	}

	return "", fmt.Errorf("%w: unrecognized DesignSafe path: '%s'", derr.ErrFileOperation, path)
}

// findProjectSystem resolves a project id (like "PRJ-1234" or uuid) to its system id.
func (f *Files) findProjectSystem(ctx context.Context, projectId string) (string, error) {
	logger := log.Named(log.Files)

	found, err := f.client.GetSystems(ctx, tapis.SystemQuery{
		Search:   fmt.Sprintf("(description.like.%%%s%%)~(id.like.%s*)", projectId, ProjectSystemPrefix),
		ListType: "ALL",
		Select:   []string{"id", "owner", "description"},
	})
	if err != nil {
		return "", derr.Wrap(derr.ErrFileOperation, err, "failed to search project system for '%s'", projectId)
	}

	matches := []string{}
	for _, sys := range found {
		if strings.Contains(strings.ToLower(sys.Description), strings.ToLower(projectId)) {
			matches = append(matches, sys.Id)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
	default:
		return "", fmt.Errorf(
			"%w: multiple project systems match '%s': %s",
			derr.ErrFileOperation, projectId, strings.Join(matches, ", "),
		)
	}

	if _, err := uuid.Parse(projectId); err != nil {
		return "", fmt.Errorf("%w: no project system found for '%s'", derr.ErrFileOperation, projectId)
	}

	candidate := ProjectSystemPrefix + projectId
	logger.Debug("search found nothing, trying system id directly", zap.String("system", candidate))
	if _, err := f.client.GetSystem(ctx, candidate); err != nil {
		return "", derr.Wrap(derr.ErrFileOperation, err, "no project system found for '%s'", projectId)
	}
	return candidate, nil
}

// URIToLocalPath translates a tapis URI into the path in DesignSafe JupyterHub.
//
// URIs on other systems, and non-URIs, are returned as they are.
func URIToLocalPath(uri string) string {
	system, path, err := ParseURI(uri)
	if err != nil {
		return uri
	}

	switch {
	case system == SystemMyData:
		// the first segment is the username.
		_, rest, _ := strings.Cut(path, "/")
		return underLocal(LocalMyData, rest)
	case system == SystemCommunity:
		return underLocal(LocalCommunity, path)
	case strings.HasPrefix(system, ProjectSystemPrefix):
		return underLocal(LocalMyProjects, path)
	default:
		return uri
	}
}

// underLocal joins root and a path on a storage system. Empty rest is root itself.
func underLocal(root, rest string) string {
	if rest == "" {
		return root
	}
	return root + "/" + rest
}
