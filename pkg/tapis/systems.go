package tapis

import (
	"context"
	"net/url"

	apisystems "github.com/designsafe-ci/dapi/api-types/systems"
	"github.com/go-resty/resty/v2"
)

func (c *client) GetSystems(ctx context.Context, query SystemQuery) ([]apisystems.System, error) {
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

	resp, err := c.send(req, resty.MethodGet, "systems", c.apipath("systems"))
	if err != nil {
		return nil, err
	}

	return unmarshalResult[[]apisystems.System](resp, MessageFor{
		Status4xx: "cannot search systems",
		Status5xx: "server error",
	})
}

func (c *client) GetSystem(ctx context.Context, systemId string) (apisystems.System, error) {
	resp, err := c.send(
		c.request(ctx), resty.MethodGet, "systems",
		c.apipath("systems", url.PathEscape(systemId)),
	)
	if err != nil {
		return apisystems.System{}, err
	}

	return unmarshalResult[apisystems.System](resp, MessageFor{
		Status4xx: "system is not found or not accessible",
		Status5xx: "server error",
	})
}
