package models

import "time"

// Class defines the class model based on the 'classes' table
type Class struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	TeacherID   string    `json:"teacherId" db:"teacher_id"`
	Description string    `json:"description" db:"description"`
	Category    string    `json:"category" db:"category"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`

	// Joined from accounts, no column in 'classes'
	TeacherUsername string `json:"teacher" db:"teacher_username"`
}
