package gtindata

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a bearer token. The token is returned
// to the caller, not stored; session ownership (persisting the
// credential, fetching the identity) belongs to the session controller.
//
// Invalid credentials come back as KindUnauthorized carrying the
// backend's message; a malformed email never leaves the process.
func (c *Client) Login(ctx context.Context, req LoginRequest) (Token, error) {
	var token Token

	if err := c.checkInput(req); err != nil {
		c.metricInc(MetricLoginFailure)
		return token, err
	}

	if err := c.send(ctx, http.MethodPost, "/v1/auth/login", nil, req, false, &token); err != nil {
		c.metricInc(MetricLoginFailure)
		return Token{}, err
	}

	c.metricInc(MetricLoginSuccess)
	return token, nil
}

// Register creates a user and its organization, returning a token with
// the same shape as Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (Token, error) {
	var token Token

	if err := c.checkInput(req); err != nil {
		return token, err
	}

	if err := c.send(ctx, http.MethodPost, "/v1/auth/register", nil, req, false, &token); err != nil {
		return Token{}, err
	}

	c.metricInc(MetricRegisterSuccess)
	return token, nil
}

// Me fetches the identity of the authenticated user. A 401 here means
// the stored credential is stale; the engine has already cleared it by
// the time this returns.
func (c *Client) Me(ctx context.Context) (Identity, error) {
	var identity Identity
	if err := c.send(ctx, http.MethodGet, "/v1/auth/me", nil, nil, true, &identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}

// UpdateMe changes the user's email and/or organization name and
// returns the updated identity.
func (c *Client) UpdateMe(ctx context.Context, req UpdateIdentityRequest) (Identity, error) {
	var identity Identity

	if err := c.checkInput(req); err != nil {
		return identity, err
	}

	if err := c.send(ctx, http.MethodPut, "/v1/auth/me", nil, req, true, &identity); err != nil {
		return Identity{}, err
	}
	return identity, nil
}
