package tokens

// Request is the body of POST /v3/oauth2/tokens.
type Request struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	GrantType string `json:"grant_type"`
}

const GrantTypePassword = "password"

// Result is the result of POST /v3/oauth2/tokens.
type Result struct {
	AccessToken  Token  `json:"access_token"`
	RefreshToken *Token `json:"refresh_token,omitempty"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	ExpiresIn   int    `json:"expires_in,omitempty"`
	Jti         string `json:"jti,omitempty"`
}
