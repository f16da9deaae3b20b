package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ValidateText checks that a required free-text field is present and at most max runes long.
func ValidateText(field, value string, max int) error {
	trimmed := strings.TrimSpace(value)

	if trimmed == "" {
		return fmt.Errorf("%s is required", field)
	}

	if utf8.RuneCountInString(trimmed) > max {
		return fmt.Errorf("%s is too long (max %d characters)", field, max)
	}

	return nil
}
