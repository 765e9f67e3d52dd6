package server

import (
	"github.com/mrletourneau/inst-death/internal/domain"
)

// GenerateRequest represents the request body for generating definitions.
type GenerateRequest struct {
	Selections []domain.Selection `json:"selections" binding:"required"`
}

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
