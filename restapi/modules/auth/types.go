// Package auth provides authentication and authorization types for the REST API.
package auth

// SignupRequest defines the body for user registration
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// LoginRequest defines the body for login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest defines the body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// UserResponse defines the session info returned to the frontend
type UserResponse struct {
	Key      string `json:"key"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
