package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SetupGoogleCredentials writes the GOOGLE_CREDENTIALS_JSON service-account
// blob to a temp file and points GOOGLE_APPLICATION_CREDENTIALS at it so the
// cloud speech clients can discover it. Returns false when no blob is
// configured; the speech endpoints then degrade to their fallbacks.
func SetupGoogleCredentials() (bool, error) {
	if HasGoogleCredentials() {
		return true, nil
	}

	blob := os.Getenv("GOOGLE_CREDENTIALS_JSON")
	if blob == "" {
		return false, nil
	}

	// Validate it is at least well-formed JSON before handing it to the SDKs.
	var creds map[string]interface{}
	if err := json.Unmarshal([]byte(blob), &creds); err != nil {
		return false, fmt.Errorf("GOOGLE_CREDENTIALS_JSON is not valid JSON: %w", err)
	}

	path := filepath.Join(os.TempDir(), "pagebuddy_gcp_creds.json")
	if err := os.WriteFile(path, []byte(blob), 0o600); err != nil {
		return false, fmt.Errorf("failed to write credentials file: %w", err)
	}

	if err := os.Setenv("GOOGLE_APPLICATION_CREDENTIALS", path); err != nil {
		return false, fmt.Errorf("failed to set GOOGLE_APPLICATION_CREDENTIALS: %w", err)
	}

	return true, nil
}

// HasGoogleCredentials reports whether a service-account path is configured.
// Cloud TTS/STT are only attempted when this is true.
func HasGoogleCredentials() bool {
	return os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != ""
}
