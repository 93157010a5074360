package validation

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "Household savings", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
		{name: "too long", input: strings.Repeat("x", 151), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid", input: "user@example.com", wantErr: false},
		{name: "empty", input: "", wantErr: true},
		{name: "missing domain", input: "user@", wantErr: true},
		{name: "not an address", input: "hello", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateJoinCode(t *testing.T) {
	if err := ValidateJoinCode("AB12CD34"); err != nil {
		t.Errorf("ValidateJoinCode() error = %v, want nil", err)
	}
	if err := ValidateJoinCode(""); err == nil {
		t.Error("ValidateJoinCode(\"\") = nil, want error")
	}
}

func TestValidateAmount(t *testing.T) {
	if err := ValidateAmount("amount", decimal.RequireFromString("10.50")); err != nil {
		t.Errorf("ValidateAmount() error = %v, want nil", err)
	}
	if err := ValidateAmount("amount", decimal.Zero); err != nil {
		t.Errorf("ValidateAmount(0) error = %v, want nil", err)
	}
	if err := ValidateAmount("amount", decimal.RequireFromString("-1")); err == nil {
		t.Error("ValidateAmount(-1) = nil, want error")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := NewError("join_code", "is required")
	if err.Error() != "join_code: is required" {
		t.Errorf("Error() = %q, want %q", err.Error(), "join_code: is required")
	}
}
