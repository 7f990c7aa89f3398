package auth

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT payload minted after a successful PIN sign-in.
type SessionClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}
