package config

import "testing"

func TestParseRejoinPolicy(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  RejoinPolicy
	}{
		{name: "deny", value: "deny", want: RejoinDeny},
		{name: "reactivate", value: "reactivate", want: RejoinReactivate},
		{name: "mixed case", value: "Reactivate", want: RejoinReactivate},
		{name: "unknown falls back to deny", value: "bogus", want: RejoinDeny},
		{name: "empty falls back to deny", value: "", want: RejoinDeny},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseRejoinPolicy(tt.value); got != tt.want {
				t.Errorf("parseRejoinPolicy(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DB_TYPE", "")

	cfg := Load()
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want 8080", cfg.ServerPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if cfg.RejoinPolicy != RejoinDeny {
		t.Errorf("RejoinPolicy = %v, want deny", cfg.RejoinPolicy)
	}
}
