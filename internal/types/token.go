package types

import (
	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims are carried by the signed session cookie. The registered
// ID (jti) holds the server-side session id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// StateClaims are carried by the signed OAuth state parameter.
type StateClaims struct {
	jwt.RegisteredClaims
	Nonce string `json:"nonce"`
}
