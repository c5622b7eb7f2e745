package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/quadrant/quadrant-backend/pkg/config"
	"github.com/quadrant/quadrant-backend/pkg/errors"
)

// Claims represents the access-token claims Quadrant cares about. Token
// issuance lives in the identity layer; this service only verifies.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	WorkspaceID string `json:"workspace_id"`
}

// Verifier validates bearer tokens and extracts workspace/actor claims
type Verifier struct {
	config *config.JWTConfig
}

// NewVerifier creates a new token verifier
func NewVerifier(cfg *config.JWTConfig) *Verifier {
	return &Verifier{config: cfg}
}

// Verify parses and validates a token string
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Unauthorized("unexpected signing method")
		}
		return []byte(v.config.Secret), nil
	}, jwt.WithIssuer(v.config.Issuer))

	if err != nil || !token.Valid {
		return nil, errors.Unauthorized("invalid token")
	}

	if claims.WorkspaceID == "" {
		return nil, errors.Unauthorized("token missing workspace claim")
	}

	return claims, nil
}
