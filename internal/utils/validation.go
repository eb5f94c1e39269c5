package utils

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Station, complex and stop IDs are short alphanumeric codes
var validIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateID validates that an ID is safe and within reasonable limits
func ValidateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if len(id) > 100 {
		return errors.New("id too long (max 100 characters)")
	}

	if !validIDPattern.MatchString(id) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

// ValidateChoice checks that value is one of choices. An empty value is
// accepted so callers can fall back to a default.
func ValidateChoice(value string, choices []string) error {
	if value == "" || slices.Contains(choices, value) {
		return nil
	}
	return fmt.Errorf("must be one of: %s", strings.Join(choices, ", "))
}
