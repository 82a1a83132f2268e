package models

import (
	"time"
)

// Account defines the account model based on the 'accounts' table
type Account struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Password  string    `json:"-" db:"password"` // bcrypt hash, never serialized
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Type      RoleType  `json:"type" db:"type"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the account holds the admin role
func (a *Account) IsAdmin() bool {
	return a != nil && a.Type == RoleAdmin
}
