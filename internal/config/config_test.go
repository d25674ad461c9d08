package config

import (
	"encoding/json"
	"os"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "TEST_VAR_1", "hello", "default", "hello"},
		{"uses default when empty", "TEST_VAR_2", "", "default", "default"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "TEST_INT_1", "42", 10, 42},
		{"uses default for empty", "TEST_INT_2", "", 10, 10},
		{"uses default for non-numeric", "TEST_INT_3", "abc", 10, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				os.Setenv(tc.key, tc.envValue)
				defer os.Unsetenv(tc.key)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsFloatOrDefault(t *testing.T) {
	os.Setenv("TEST_FLOAT_1", "0.35")
	defer os.Unsetenv("TEST_FLOAT_1")

	if got := getEnvAsFloatOrDefault("TEST_FLOAT_1", 0.2); got != 0.35 {
		t.Errorf("Expected 0.35, got %v", got)
	}
	if got := getEnvAsFloatOrDefault("TEST_FLOAT_MISSING", 0.2); got != 0.2 {
		t.Errorf("Expected default 0.2, got %v", got)
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("NONEXISTENT_REQUIRED_VAR")
}

func TestSetupGoogleCredentials(t *testing.T) {
	os.Unsetenv("GOOGLE_APPLICATION_CREDENTIALS")
	defer os.Unsetenv("GOOGLE_APPLICATION_CREDENTIALS")
	defer os.Unsetenv("GOOGLE_CREDENTIALS_JSON")

	t.Run("no blob configured", func(t *testing.T) {
		os.Unsetenv("GOOGLE_CREDENTIALS_JSON")
		ok, err := SetupGoogleCredentials()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if ok {
			t.Error("Expected ok=false with no blob configured")
		}
	})

	t.Run("invalid blob rejected", func(t *testing.T) {
		os.Setenv("GOOGLE_CREDENTIALS_JSON", "not-json")
		if _, err := SetupGoogleCredentials(); err == nil {
			t.Error("Expected error for invalid JSON blob")
		}
	})

	t.Run("valid blob written and exported", func(t *testing.T) {
		blob, _ := json.Marshal(map[string]string{"type": "service_account", "project_id": "demo"})
		os.Setenv("GOOGLE_CREDENTIALS_JSON", string(blob))

		ok, err := SetupGoogleCredentials()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if !ok {
			t.Fatal("Expected ok=true")
		}

		path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if path == "" {
			t.Fatal("GOOGLE_APPLICATION_CREDENTIALS not set")
		}
		written, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("Failed to read credentials file: %v", err)
		}
		if string(written) != string(blob) {
			t.Errorf("Credentials file content mismatch: %s", written)
		}
		if !HasGoogleCredentials() {
			t.Error("Expected HasGoogleCredentials()=true after setup")
		}
	})
}

func TestHasGoogleCredentials(t *testing.T) {
	os.Unsetenv("GOOGLE_APPLICATION_CREDENTIALS")
	if HasGoogleCredentials() {
		t.Error("Expected false with no path configured")
	}
	os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "/tmp/creds.json")
	defer os.Unsetenv("GOOGLE_APPLICATION_CREDENTIALS")
	if !HasGoogleCredentials() {
		t.Error("Expected true with path configured")
	}
}
