package domain

import (
	"errors"
	"strings"
	"time"
)

const maxNameLength = 255

// Employee is an enrolled member of staff. The embedding is produced once
// at registration and never partially updated.
type Employee struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Embedding []float64 `json:"-"`
	ImagePath string    `json:"image_path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ValidateName trims and checks a person name
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrValidationFailed.WithError(errors.New("name is required"))
	}
	if len(name) > maxNameLength {
		return "", ErrValidationFailed.WithError(errors.New("name must be at most 255 characters"))
	}
	return name, nil
}
