package dto

import (
	"time"

	"github.com/yigit/taluation/internal/app/models"
)

// AccountResponse is the full account profile, visible to its owner and admins
type AccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RedactedAccountResponse is what other accounts get to see
type RedactedAccountResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// NewAccountResponse projects an account without its password hash
func NewAccountResponse(account *models.Account) *AccountResponse {
	if account == nil {
		return nil
	}
	return &AccountResponse{
		ID:        account.ID,
		Username:  account.Username,
		Email:     account.Email,
		Phone:     account.Phone,
		Type:      string(account.Type),
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

// NewRedactedAccountResponse projects an account down to its identifiers
func NewRedactedAccountResponse(account *models.Account) *RedactedAccountResponse {
	if account == nil {
		return nil
	}
	return &RedactedAccountResponse{
		ID:       account.ID,
		Username: account.Username,
	}
}

// UpdateAccountRequest represents a profile update. Empty fields are left unchanged;
// Username selects the target account and defaults to the caller.
type UpdateAccountRequest struct {
	Username string `json:"username" binding:"omitempty,username"`
	NewName  string `json:"newname" binding:"omitempty,username"`
	Email    string `json:"email" binding:"omitempty,email"`
	Phone    string `json:"phone" binding:"omitempty,phone"`
	Type     string `json:"type" binding:"omitempty,oneof=student teacher admin"`
}

// DeleteAccountRequest names the account to delete, defaulting to the caller
type DeleteAccountRequest struct {
	Username string `json:"username"`
}

// AccountQuery selects the account to show, defaulting to the caller
type AccountQuery struct {
	Name string `form:"name"`
}
