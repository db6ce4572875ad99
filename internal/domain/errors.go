package domain

import (
	"fmt"
)

type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so copies made by
// WithError still satisfy errors.Is against the predefined values.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:       e.Code,
		Message:    e.Message,
		StatusCode: e.StatusCode,
		Err:        err,
	}
}

// Pre-defined errors
var (
	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred",
		StatusCode: 500,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: 400,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Invalid or missing API key",
		StatusCode: 401,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: 404,
	}

	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Too many requests, try again later",
		StatusCode: 429,
	}

	ErrValidationFailed = &AppError{
		Code:       "VALIDATION_FAILED",
		Message:    "Request validation failed",
		StatusCode: 422,
	}

	// Image and face errors

	ErrInvalidImage = &AppError{
		Code:       "INVALID_IMAGE",
		Message:    "Invalid image data",
		StatusCode: 400,
	}

	ErrImageTooLarge = &AppError{
		Code:       "IMAGE_TOO_LARGE",
		Message:    "Image exceeds the maximum allowed size",
		StatusCode: 413,
	}

	ErrNoFaceDetected = &AppError{
		Code:       "NO_FACE_DETECTED",
		Message:    "No face detected in the image",
		StatusCode: 400,
	}

	ErrDimensionalityMismatch = &AppError{
		Code:       "DIMENSIONALITY_MISMATCH",
		Message:    "Stored face embedding does not match the query embedding length",
		StatusCode: 500,
	}

	ErrExtractorUnavailable = &AppError{
		Code:       "EXTRACTOR_UNAVAILABLE",
		Message:    "Face embedding service unavailable",
		StatusCode: 503,
	}

	// Record errors

	ErrEmployeeNotFound = &AppError{
		Code:       "EMPLOYEE_NOT_FOUND",
		Message:    "Employee not found",
		StatusCode: 404,
	}

	ErrVisitorNotFound = &AppError{
		Code:       "VISITOR_NOT_FOUND",
		Message:    "Visitor not found",
		StatusCode: 404,
	}

	ErrInvalidDecision = &AppError{
		Code:       "INVALID_DECISION",
		Message:    "Invalid decision, expected approve or reject",
		StatusCode: 400,
	}

	ErrInvalidStatus = &AppError{
		Code:       "INVALID_STATUS",
		Message:    "Invalid visitor status",
		StatusCode: 400,
	}
)
