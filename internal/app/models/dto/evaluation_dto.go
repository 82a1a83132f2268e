package dto

import "encoding/json"

// CreateEvaluationRequest represents a student's evaluation of a class. Score is a
// pointer so that zero and negative inputs reach clamping instead of failing "required",
// and a json.Number so that integers of any magnitude decode.
type CreateEvaluationRequest struct {
	ClassID string       `json:"cls" binding:"required" example:"5f0c1c8e-3b7a-4c7e-9a51-1f2d0b3c4d5e"`
	Score   *json.Number `json:"score" binding:"required" example:"4"`
	Comment string       `json:"comment" example:"Clear lectures"`
}

// EvaluationQuery filters evaluation lookups; all fields are optional
type EvaluationQuery struct {
	ID      string `form:"id"`
	ClassID string `form:"cls"`
	User    string `form:"user"`
}

// StatsQuery selects the class to aggregate; empty means all evaluations
type StatsQuery struct {
	ClassID string `form:"cls"`
}

// EvaluationStats summarizes the scores of a set of evaluations. Min and Max are
// null when there are no evaluations.
type EvaluationStats struct {
	Count     int         `json:"count"`
	Mean      float64     `json:"mean"`
	Max       *int        `json:"max"`
	Min       *int        `json:"min"`
	Histogram map[int]int `json:"histogram"`
}
