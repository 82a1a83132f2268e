package dto

import "encoding/json"

// AuthEnvelope is the outer shape of every authenticated write request:
// {"auth": {"username": ..., "token": ...}, "data": {...}}.
// Both members are kept raw so the gate can tell a malformed body from a
// malformed auth member.
type AuthEnvelope struct {
	Auth json.RawMessage `json:"auth"`
	Data json.RawMessage `json:"data"`
}

// AuthCredentials is the (username, token) pair presented by a caller
type AuthCredentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Token    string `json:"token" form:"token" binding:"required"`
}

// RegisterRequest represents an account registration request
type RegisterRequest struct {
	Username string `json:"username" binding:"required,username" example:"alice"`
	Password string `json:"password" binding:"required" example:"pw123456"`
	Email    string `json:"email" binding:"required,email" example:"alice@example.com"`
	Phone    string `json:"phone" binding:"required,phone" example:"+905551112233"`
	Type     string `json:"type" binding:"omitempty,oneof=student teacher admin" example:"student"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"alice"`
	Password string `json:"password" binding:"required" example:"pw123456"`
}

// LoginResponse carries the freshly issued token
type LoginResponse struct {
	Token string `json:"token"`
}

// ChangePasswordRequest represents a password change by the signed-in account
type ChangePasswordRequest struct {
	OldPassword string `json:"oldpassword" binding:"required"`
	NewPassword string `json:"newpassword" binding:"required"`
}
