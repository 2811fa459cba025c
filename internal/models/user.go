// Package models holds the domain types shared by the repository, auth and
// API layers.
package models

// User is an authenticated identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `binding:"required,email" json:"email"`
	Password string `binding:"required"       json:"password"`
}
