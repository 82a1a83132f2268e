package dto

// CreateClassRequest represents a class creation request. Teacher is the owning
// teacher's username and may only be set by admins.
type CreateClassRequest struct {
	Name        string `json:"name" binding:"required,max=255" example:"Operating Systems"`
	Description string `json:"description" example:"Processes, memory and file systems"`
	Category    string `json:"category" example:"Computer Science"`
	Teacher     string `json:"teacher" example:"bob"`
}

// UpdateClassRequest represents a partial class update
type UpdateClassRequest struct {
	ID          string  `json:"id" binding:"required"`
	Name        string  `json:"name" binding:"omitempty,max=255"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Teacher     string  `json:"teacher"`
}

// ClassQuery filters class lookups; all fields are optional
type ClassQuery struct {
	ID      string `form:"id"`
	Name    string `form:"cls"`
	Teacher string `form:"teacher"`
}

// IDRequest identifies the record a write request targets
type IDRequest struct {
	ID string `json:"id" binding:"required"`
}
