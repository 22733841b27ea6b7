package service

import (
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dataroom/internal/domain"
)

var noSeparators = regexp.MustCompile(`^[^/\\]+$`)

// nameRules are the rules shared by data room, folder and file names.
// Names are trimmed before validation.
func nameRules(maxLen int) []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(1, maxLen),
		validation.Match(noSeparators).Error("name cannot contain slashes"),
		validation.NotIn(".", "..").Error("name cannot be . or .."),
	}
}

// invalid wraps an ozzo validation error as a domain validation error
func invalid(err error) error {
	return fmt.Errorf("%w: %v", domain.ErrValidation, err)
}
