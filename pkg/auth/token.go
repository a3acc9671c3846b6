package auth

import (
	"fmt"
	"strings"
	"time"

	derr "github.com/designsafe-ci/dapi/pkg/errors"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are claims of a TAPIS access token.
type Claims struct {
	jwt.RegisteredClaims

	Username    string `json:"tapis/username"`
	TenantId    string `json:"tapis/tenant_id"`
	AccountType string `json:"tapis/account_type"`
	TokenType   string `json:"tapis/token_type"`
}

// ParseToken reads claims of a TAPIS access token.
//
// The signature is NOT verified, since it is TAPIS's business.
// Use this only to learn username and expiry of tokens TAPIS issued to you.
func ParseToken(token string) (Claims, error) {
	claims := Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Claims{}, derr.Wrap(derr.ErrAuthentication, err, "malformed access token")
	}

	if claims.Username == "" {
		// "sub" is "<username>@<tenant>"
		if user, _, ok := strings.Cut(claims.Subject, "@"); ok {
			claims.Username = user
		}
	}
	if claims.Username == "" {
		return Claims{}, fmt.Errorf("%w: access token has no username", derr.ErrAuthentication)
	}
	return claims, nil
}

// Expiry returns expiry of the token. It is zero time if the token has no "exp".
func (c Claims) Expiry() time.Time {
	if c.RegisteredClaims.ExpiresAt == nil {
		return time.Time{}
	}
	return c.RegisteredClaims.ExpiresAt.Time
}

// Expired reports whether the token expires within leeway from now.
//
// Tokens without expiry never expire.
func (c Claims) Expired(now time.Time, leeway time.Duration) bool {
	exp := c.Expiry()
	if exp.IsZero() {
		return false
	}
	return !now.Add(leeway).Before(exp)
}
