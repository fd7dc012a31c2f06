package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vidya-press/field-crm-api/internal/models"
	appErrors "github.com/vidya-press/field-crm-api/pkg/errors"
)

// IdentityConfig defines token validation settings.
type IdentityConfig struct {
	Secret     string
	Expiration time.Duration
}

// IdentityService validates salesman bearer tokens. Issuing is used by tests
// and local tooling; production tokens come from the company SSO with the
// shared secret.
type IdentityService struct {
	config IdentityConfig
}

// NewIdentityService constructs an IdentityService instance.
func NewIdentityService(config IdentityConfig) *IdentityService {
	return &IdentityService{config: config}
}

// ValidateToken parses and verifies an HS256 bearer token.
func (s *IdentityService) ValidateToken(token string) (*models.IdentityClaims, error) {
	claims := &models.IdentityClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(s.config.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired token")
	}
	if claims.SalesmanID == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token carries no salesman identity")
	}
	return claims, nil
}

// IssueToken signs a token for the given identity.
func (s *IdentityService) IssueToken(salesmanID, name string, admin bool) (string, error) {
	now := time.Now().UTC()
	claims := &models.IdentityClaims{
		SalesmanID: salesmanID,
		Name:       name,
		Admin:      admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   salesmanID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
