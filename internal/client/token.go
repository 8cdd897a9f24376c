package client

import "github.com/golang-jwt/jwt/v5"

// checkToken rejects calls early when the bearer token is a JWT whose
// expiry has already passed, so a dead session fails fast instead of
// round-tripping a guaranteed 401. Opaque tokens pass through and the
// service stays the arbiter.
func (client *Client) checkToken() error {
	if client.token == "" {
		return nil
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(client.token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(client.now()) {
		return ErrTokenExpired
	}
	return nil
}
