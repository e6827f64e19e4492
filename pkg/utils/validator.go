package utils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	taxIDPattern = regexp.MustCompile(`^[A-Z0-9]+$`)

	// Mainland mobile number
	phonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

	controlChars = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

// ValidateTaxID validates a taxpayer identification number: 15, 18 or 20
// upper-case letters or digits, spaces ignored
func ValidateTaxID(taxID string) error {
	cleaned := strings.Join(strings.Fields(taxID), "")
	switch len(cleaned) {
	case 15, 18, 20:
	default:
		return fmt.Errorf("tax ID must be 15, 18 or 20 characters: %s", taxID)
	}
	if !taxIDPattern.MatchString(cleaned) {
		return fmt.Errorf("tax ID has invalid characters: %s", taxID)
	}
	return nil
}

// ValidatePhone validates a mainland mobile number
func ValidatePhone(phone string) error {
	if !phonePattern.MatchString(phone) {
		return fmt.Errorf("invalid phone number: %s", phone)
	}
	return nil
}

// NewValidator returns a struct validator with the "taxid" and "phone" tags registered
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("taxid", func(fl validator.FieldLevel) bool {
		return ValidateTaxID(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return ValidatePhone(fl.Field().String()) == nil
	})
	return v
}

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}
