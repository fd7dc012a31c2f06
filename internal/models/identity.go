package models

import "github.com/golang-jwt/jwt/v5"

// IdentityClaims carries the salesman identity on API calls. Tokens are
// issued by the company SSO; this service only validates them and threads the
// salesman id through every engine call.
type IdentityClaims struct {
	SalesmanID string `json:"salesman_id"`
	Name       string `json:"name,omitempty"`
	Admin      bool   `json:"admin,omitempty"`
	jwt.RegisteredClaims
}
