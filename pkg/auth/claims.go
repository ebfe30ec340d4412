package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims carries the principal identity inside a signed JWT.
type AccessTokenClaims struct {
	UserID   uuid.UUID `json:"uid"`
	Username string    `json:"username,omitempty"`
	jwt.RegisteredClaims
}

// AccessTokenPayload is the input used when minting a token.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Username string
	JTI      string
}
