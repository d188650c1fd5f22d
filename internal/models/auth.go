package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the verified identity attached to a request. Tokens from the
// Firebase provider are mapped onto the same shape.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role,omitempty"`
	Email    string   `json:"email,omitempty"`
	FullName string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}
