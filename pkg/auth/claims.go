package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data the identity provider embeds when
// minting a JWT. Minting lives here only for tests and local development; in
// production the external identity provider signs tokens with the shared
// secret.
type AccessTokenPayload struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   string
	JTI    string
}

// AccessTokenClaims represents the typed JWT presented by clients.
type AccessTokenClaims struct {
	UserID uuid.UUID `json:"user_id"`
	OrgID  uuid.UUID `json:"org_id"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}
