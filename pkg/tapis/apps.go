package tapis

import (
	"context"
	"net/url"

	apiapps "github.com/designsafe-ci/dapi/api-types/apps"
	"github.com/go-resty/resty/v2"
)

func (c *client) GetApps(ctx context.Context, query AppQuery) ([]apiapps.Summary, error) {
	req := c.request(ctx)
	if query.Search != "" {
		req.SetQueryParam("search", query.Search)
	}
	if query.ListType != "" {
		req.SetQueryParam("listType", query.ListType)
	}
	if len(query.Select) != 0 {
		req.SetQueryParam("select", join(query.Select))
	}

	resp, err := c.send(req, resty.MethodGet, "apps", c.apipath("apps"))
	if err != nil {
		return nil, err
	}

	return unmarshalResult[[]apiapps.Summary](resp, MessageFor{
		Status4xx: "cannot search apps",
		Status5xx: "server error",
	})
}

func (c *client) GetApp(ctx context.Context, appId string, version string) (apiapps.App, error) {
	path := []string{"apps", url.PathEscape(appId)}
	if version != "" {
		path = append(path, url.PathEscape(version))
	}

	resp, err := c.send(c.request(ctx), resty.MethodGet, "apps", c.apipath(path...))
	if err != nil {
		return apiapps.App{}, err
	}

	return unmarshalResult[apiapps.App](resp, MessageFor{
		Status4xx: "app is not found or not accessible",
		Status5xx: "server error",
	})
}
