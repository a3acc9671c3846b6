// Package apps looks up TAPIS applications.
package apps

import (
	"context"
	"fmt"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/designsafe-ci/dapi/pkg/log"
	"github.com/designsafe-ci/dapi/pkg/tapis"
	"go.uber.org/zap"
)

// list types of Find
const (
	ListOwned        = "OWNED"
	ListSharedPublic = "SHARED_PUBLIC"
	ListSharedDirect = "SHARED_DIRECT"
	ListReadPerm     = "READ_PERM"
	ListMine         = "MINE"
	ListAll          = "ALL"
)

type Apps struct {
	client tapis.Client
}

func New(client tapis.Client) *Apps {
	return &Apps{client: client}
}

// Find searches apps whose id contains term.
//
// Empty term lists all apps of listType. Empty listType means ListAll.
func (a *Apps) Find(ctx context.Context, term string, listType string) ([]apiapps.Summary, error) {
	if listType == "" {
		listType = ListAll
	}
	query := tapis.AppQuery{
		ListType: listType,
		Select:   []string{"id", "version", "owner"},
	}
	if term != "" {
		query.Search = fmt.Sprintf("(id.like.*%s*)", term)
	}

	found, err := a.client.GetApps(ctx, query)
	if err != nil {
		return nil, derr.Wrap(derr.ErrAppDiscovery, err, "failed to search apps matching '%s'", term)
	}
	log.Named(log.Apps).Debug("apps found", zap.String("term", term), zap.Int("count", len(found)))
	return found, nil
}

// Details gets the app. Empty version means the latest.
//
// It returns derr.ErrAppNotFound when TAPIS has no such app.
func (a *Apps) Details(ctx context.Context, appId string, version string) (apiapps.App, error) {
	app, err := a.client.GetApp(ctx, appId, version)
	if err == nil {
		return app, nil
	}

	if version == "" {
		version = "latest"
	}
	if tapis.IsNotFound(err) {
		return apiapps.App{}, derr.Wrap(derr.ErrAppNotFound, err, "app '%s' (version: %s)", appId, version)
	}
	return apiapps.App{}, derr.Wrap(derr.ErrAppDiscovery, err, "failed to get details for app '%s' (version: %s)", appId, version)
}
