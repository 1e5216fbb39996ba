// Package model provides data models for the KhojPayo platform.
package model

import "time"

// User represents a platform user
type User struct {
	Key          string    `json:"_key,omitempty"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	FullName     string    `json:"full_name,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Role         string    `json:"role"`   // admin, user
	Status       string    `json:"status"` // pending, active, inactive
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser creates a new user with default values
func NewUser(username, email string) *User {
	now := time.Now().UTC()
	return &User{
		Username:  username,
		Email:     email,
		Role:      "user",
		Status:    "active",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAdmin returns true if the user holds the platform admin role
func (u *User) IsAdmin() bool {
	return u.Role == "admin"
}
