package validation

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

// Error marks malformed or missing input. Handlers map it to a 400 response,
// distinct from not-found and permission failures.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewError builds a validation error for a field
func NewError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// ValidateName checks a display name for families, circles and ledger entities
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewError("name", "is required")
	}
	if len(name) > 150 {
		return NewError("name", "must be at most 150 characters")
	}
	return nil
}

// ValidateEmail checks an email address
func ValidateEmail(email string) error {
	if email == "" {
		return NewError("email", "is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return NewError("email", "is not a valid address")
	}
	return nil
}

// ValidateJoinCode checks the join code supplied to a search operation
func ValidateJoinCode(code string) error {
	if strings.TrimSpace(code) == "" {
		return NewError("join_code", "is required")
	}
	return nil
}

// ValidateAmount checks that a monetary amount is not negative
func ValidateAmount(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return NewError(field, "must not be negative")
	}
	return nil
}

// ValidatePeriod checks a budget period label such as "2024-06" or "2024-Q2"
func ValidatePeriod(period string) error {
	period = strings.TrimSpace(period)
	if period == "" {
		return NewError("period", "is required")
	}
	if len(period) > 20 {
		return NewError("period", "must be at most 20 characters")
	}
	return nil
}
