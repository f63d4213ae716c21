package tm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vault-md/tmatch/internal/scope"
)

// ErrNotFound is returned when an entry does not exist or is not visible to
// the caller. The two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("translation memory entry not found")

// ValidationError reports malformed input. It is returned before storage is
// touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateScope checks s and reports problems as a ValidationError.
func ValidateScope(s scope.Scope) error {
	if err := scope.Validate(s); err != nil {
		return NewValidationError("scope", err.Error())
	}
	return nil
}

// CanonicalLanguages trims surrounding whitespace from a language pair so
// that "en " and "en" address the same partition. Codes are otherwise opaque.
func CanonicalLanguages(sourceLanguage, targetLanguage string) (string, string) {
	return strings.TrimSpace(sourceLanguage), strings.TrimSpace(targetLanguage)
}

// ValidateLanguages rejects blank language codes.
func ValidateLanguages(sourceLanguage, targetLanguage string) error {
	if strings.TrimSpace(sourceLanguage) == "" {
		return NewValidationError("sourceLanguage", "must not be empty")
	}
	if strings.TrimSpace(targetLanguage) == "" {
		return NewValidationError("targetLanguage", "must not be empty")
	}
	return nil
}

// ValidateThresholds checks lookup bounds. Out of range values are rejected,
// never clamped.
func ValidateThresholds(minMatchPercent, maxResults int) error {
	if minMatchPercent < 0 || minMatchPercent > 100 {
		return NewValidationError("minMatchPercent", fmt.Sprintf("must be between 0 and 100, got %d", minMatchPercent))
	}
	if maxResults < 1 {
		return NewValidationError("maxResults", fmt.Sprintf("must be at least 1, got %d", maxResults))
	}
	return nil
}

// ValidateStoreItem checks a pair before it is stored.
func ValidateStoreItem(item StoreItem) error {
	if err := ValidateLanguages(item.SourceLanguage, item.TargetLanguage); err != nil {
		return err
	}
	if strings.TrimSpace(item.SourceText) == "" {
		return NewValidationError("sourceText", "must not be empty")
	}
	return nil
}
