package credentials

import (
	"strings"
	"testing"
)

func TestGenerateJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := GenerateJoinCode()
		if err != nil {
			t.Fatalf("GenerateJoinCode() error: %v", err)
		}
		if len(code) != JoinCodeLength {
			t.Errorf("GenerateJoinCode() length = %d, want %d", len(code), JoinCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(joinCodeChars, c) {
				t.Errorf("GenerateJoinCode() produced invalid character %q in %q", c, code)
			}
		}
		seen[code] = true
	}
	// 50 draws from a 36^8 space colliding into one value means something is broken
	if len(seen) == 1 {
		t.Error("GenerateJoinCode() returned the same code 50 times")
	}
}

func TestGenerateJoinPassword(t *testing.T) {
	password, err := GenerateJoinPassword()
	if err != nil {
		t.Fatalf("GenerateJoinPassword() error: %v", err)
	}
	if len(password) != JoinPasswordLength {
		t.Errorf("GenerateJoinPassword() length = %d, want %d", len(password), JoinPasswordLength)
	}
	for _, c := range password {
		if !strings.ContainsRune(joinPasswordChars, c) {
			t.Errorf("GenerateJoinPassword() produced invalid character %q", c)
		}
	}
}
