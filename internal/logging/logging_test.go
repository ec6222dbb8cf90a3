package logging

import (
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		env       string
		level     string
		shouldErr bool
	}{
		{"Development default", "", "", false},
		{"Production", "production", "", false},
		{"Explicit level", "production", "warn", false},
		{"Bad level", "", "loud", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.env)
			t.Setenv("LOG_LEVEL", tt.level)

			logger, err := New()
			if (err != nil) != tt.shouldErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.shouldErr)
			}
			if err == nil && logger == nil {
				t.Fatal("New() returned nil logger")
			}
		})
	}
}
