package tapis

import (
	"context"
	"net/url"

	apijobs "github.com/designsafe-ci/dapi/api-types/jobs"
	"github.com/go-resty/resty/v2"
)

func (c *client) SubmitJob(ctx context.Context, request apijobs.Request) (apijobs.Job, error) {
	req := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request)

	resp, err := c.send(req, resty.MethodPost, "jobs", c.apipath("jobs", "submit"))
	if err != nil {
		return apijobs.Job{}, err
	}

	return unmarshalResult[apijobs.Job](resp, MessageFor{
		Status4xx: "job request is rejected",
		Status5xx: "server error",
	})
}

func (c *client) GetJob(ctx context.Context, jobUuid string) (apijobs.Job, error) {
	resp, err := c.send(
		c.request(ctx), resty.MethodGet, "jobs",
		c.apipath("jobs", url.PathEscape(jobUuid)),
	)
	if err != nil {
		return apijobs.Job{}, err
	}

	return unmarshalResult[apijobs.Job](resp, MessageFor{
		Status4xx: "job is not found",
		Status5xx: "server error",
	})
}

func (c *client) GetJobStatus(ctx context.Context, jobUuid string) (string, error) {
	resp, err := c.send(
		c.request(ctx), resty.MethodGet, "jobs",
		c.apipath("jobs", url.PathEscape(jobUuid), "status"),
	)
	if err != nil {
		return "", err
	}

	result, err := unmarshalResult[apijobs.StatusResult](resp, MessageFor{
		Status4xx: "job is not found",
		Status5xx: "server error",
	})
	if err != nil {
		return "", err
	}
	return result.Status, nil
}

func (c *client) GetJobHistory(ctx context.Context, jobUuid string) ([]apijobs.HistoryEvent, error) {
	resp, err := c.send(
		c.request(ctx), resty.MethodGet, "jobs",
		c.apipath("jobs", url.PathEscape(jobUuid), "history"),
	)
	if err != nil {
		return nil, err
	}

	return unmarshalResult[[]apijobs.HistoryEvent](resp, MessageFor{
		Status4xx: "job is not found",
		Status5xx: "server error",
	})
}

func (c *client) CancelJob(ctx context.Context, jobUuid string) error {
	req := c.request(ctx).SetHeader("Content-Type", "application/json").SetBody("{}")
	resp, err := c.send(
		req, resty.MethodPost, "jobs",
		c.apipath("jobs", url.PathEscape(jobUuid), "cancel"),
	)
	if err != nil {
		return err
	}

	return expectSuccess(resp, MessageFor{
		Status4xx: "job cannot be cancelled",
		Status5xx: "server error",
	})
}
