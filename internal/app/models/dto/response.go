package dto

// Response is the uniform envelope returned by every API handler
type Response struct {
	Message string      `json:"message" example:"Operation completed successfully."`
	Data    interface{} `json:"data"`
	Success bool        `json:"success" example:"true"`
}

// NewSuccessResponse wraps data in a successful envelope
func NewSuccessResponse(message string, data interface{}) Response {
	return Response{
		Message: message,
		Data:    data,
		Success: true,
	}
}

// NewFailureResponse builds an envelope for a failed operation; data is always null
func NewFailureResponse(message string) Response {
	return Response{
		Message: message,
		Data:    nil,
		Success: false,
	}
}

// AuthFailure is the body the auth gate answers with when it rejects a request
type AuthFailure struct {
	Detail string `json:"detail" example:"Missing authentication credentials"`
}

// RecordResponse identifies a newly created record
type RecordResponse struct {
	ID string `json:"id" example:"5f0c1c8e-3b7a-4c7e-9a51-1f2d0b3c4d5e"`
}
