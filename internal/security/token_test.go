package security

import (
	"testing"
	"time"
)

func TestSignAndParseUserToken(t *testing.T) {
	token, err := SignUserToken("test-secret", UserClaims{UserID: 42, Email: "a@example.com", Name: "A"}, time.Hour)
	if err != nil {
		t.Fatalf("SignUserToken() error: %v", err)
	}

	claims, err := ParseUserToken("test-secret", token)
	if err != nil {
		t.Fatalf("ParseUserToken() error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Email != "a@example.com" || claims.Name != "A" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestParseUserTokenRejectsBadInput(t *testing.T) {
	valid, err := SignUserToken("test-secret", UserClaims{UserID: 7}, time.Hour)
	if err != nil {
		t.Fatalf("SignUserToken() error: %v", err)
	}
	expired, err := SignUserToken("test-secret", UserClaims{UserID: 7}, -time.Hour)
	if err != nil {
		t.Fatalf("SignUserToken() error: %v", err)
	}

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{name: "wrong secret", secret: "other-secret", token: valid},
		{name: "garbage token", secret: "test-secret", token: "not.a.token"},
		{name: "empty token", secret: "test-secret", token: ""},
		{name: "expired token", secret: "test-secret", token: expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseUserToken(tt.secret, tt.token); err == nil {
				t.Error("ParseUserToken() accepted an invalid token")
			}
		})
	}
}
