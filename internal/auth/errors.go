package auth

import "errors"

var (
	ErrNotAuthenticated = errors.New("Not authenticated")
	ErrTokenExpired     = errors.New("Token expired or revoked")
)
