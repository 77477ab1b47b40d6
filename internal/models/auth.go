package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims are the claims embedded in access tokens.
type JWTClaims struct {
	Code  string        `json:"code"`
	Login string        `json:"login"`
	Role  PersonnelRole `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the credentials payload for authentication.
type LoginRequest struct {
	Login     string `json:"login" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// AuthResponse is returned after a successful login or registration.
type AuthResponse struct {
	Token     string        `json:"token"`
	ExpiresIn int64         `json:"expires_in"`
	IssuedAt  time.Time     `json:"issued_at"`
	Code      string        `json:"code"`
	Name      string        `json:"name"`
	Role      PersonnelRole `json:"role"`
}
