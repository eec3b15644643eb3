package utils

import "github.com/google/uuid"

// NewPersonID returns a durable person identifier.
func NewPersonID() string {
	return uuid.NewString()
}

func randomID() string {
	return uuid.NewString()
}
