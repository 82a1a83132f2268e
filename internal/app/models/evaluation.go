package models

import "time"

// Evaluation is a student's score and comment for a class
type Evaluation struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"studentId" db:"student_id"`
	ClassID   string    `json:"classId" db:"class_id"`
	Score     int       `json:"score" db:"score"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	// Joined display fields
	StudentUsername string `json:"user" db:"student_username"`
	ClassName       string `json:"cls" db:"class_name"`
}
