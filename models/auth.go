package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// Credentials is the login input handed to the credential exchange.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is the single success/failure outcome of a login attempt.
// Message carries the user-facing error text when Success is false.
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// TokenClaims is the payload minted by the local credential provider and
// mirrored by the server-issued tokens this core consumes.
type TokenClaims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`

	jwt.RegisteredClaims
}
