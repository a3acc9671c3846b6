package tapis

import (
	"context"

	apitokens "github.com/designsafe-ci/dapi/api-types/tokens"
	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/go-resty/resty/v2"
)

// CreateToken exchanges username and password for an access token.
//
// Rejected credentials are reported as errors being derr.ErrAuthentication.
func CreateToken(ctx context.Context, baseURL string, username string, password string, options ...Option) (apitokens.Token, error) {
	c, err := newClient(baseURL, buildConfig(options))
	if err != nil {
		return apitokens.Token{}, derr.Wrap(derr.ErrAuthentication, err, "invalid tenant")
	}

	req := c.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(apitokens.Request{
			Username:  username,
			Password:  password,
			GrantType: apitokens.GrantTypePassword,
		})
	resp, err := c.send(req, resty.MethodPost, "oauth2", c.apipath("oauth2", "tokens"))
	if err != nil {
		return apitokens.Token{}, derr.Wrap(derr.ErrAuthentication, err, "cannot request token")
	}

	result, err := unmarshalResult[apitokens.Result](resp, MessageFor{
		Status4xx: "authentication failed",
		Status5xx: "server error",
	})
	if err != nil {
		return apitokens.Token{}, derr.Wrap(derr.ErrAuthentication, err, "authentication failed for %s", username)
	}
	if result.AccessToken.AccessToken == "" {
		return apitokens.Token{}, derr.NewCuiError(
			"tapis returns no access token", derr.WithCause(derr.ErrAuthentication),
		)
	}
	return result.AccessToken, nil
}
