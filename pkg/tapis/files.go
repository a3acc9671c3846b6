package tapis

import (
	"context"
	"io"
	"net/url"
	"path"
	"strconv"

	apifiles "github.com/designsafe-ci/dapi/api-types/files"
	"github.com/go-resty/resty/v2"
)

func (c *client) ListFiles(ctx context.Context, systemId string, target string, limit int, offset int) ([]apifiles.FileInfo, error) {
	req := c.request(ctx)
	if 0 < limit {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	if 0 < offset {
		req.SetQueryParam("offset", strconv.Itoa(offset))
	}

	resp, err := c.send(
		req, resty.MethodGet, "files",
		c.apipath("files", "ops", url.PathEscape(systemId), escapePath(target)),
	)
	if err != nil {
		return nil, err
	}

	return unmarshalResult[[]apifiles.FileInfo](resp, MessageFor{
		Status4xx: "path is not found or not accessible",
		Status5xx: "server error",
	})
}

func (c *client) GetFileContents(ctx context.Context, systemId string, target string, zip bool, handler func(io.Reader) error) error {
	req := c.request(ctx).SetHeader("Accept", "application/octet-stream")
	if zip {
		req.SetQueryParam("zip", "true")
	}

	resp, err := c.send(
		req, resty.MethodGet, "files",
		c.apipath("files", "content", url.PathEscape(systemId), escapePath(target)),
	)
	if err != nil {
		return err
	}

	if StatusCodeRangeOf(resp) != Status2xx {
		defer resp.Body.Close()
		return errorOf(resp, MessageFor{
			Status4xx: "path is not found or not accessible",
			Status5xx: "server error",
		})
	}

	defer resp.Body.Close()
	return handler(resp.Body)
}

func (c *client) InsertFile(ctx context.Context, systemId string, filepath string, content io.Reader) error {
	req := c.request(ctx).SetFileReader("file", path.Base(filepath), content)

	resp, err := c.send(
		req, resty.MethodPost, "files",
		c.apipath("files", "ops", url.PathEscape(systemId), escapePath(filepath)),
	)
	if err != nil {
		return err
	}

	return expectSuccess(resp, MessageFor{
		Status4xx: "cannot upload file",
		Status5xx: "server error",
	})
}
