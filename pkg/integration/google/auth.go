package google

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// NewHTTPClient creates an authenticated HTTP client from a service account
// JSON key file, limited to scopes.
func NewHTTPClient(ctx context.Context, credentialsFile string, scopes ...string) (*http.Client, error) {
	data, err := readCredentials(credentialsFile)
	if err != nil {
		return nil, err
	}

	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	return conf.Client(ctx), nil
}

// ClientOption returns an option.ClientOption for use with Google API service
// constructors.
func ClientOption(credentialsFile string) option.ClientOption {
	return option.WithCredentialsFile(credentialsFile)
}

// ServiceAccountEmail returns the client_email of a key file, which is the
// address a calendar or folder must be shared with.
func ServiceAccountEmail(credentialsFile string) (string, error) {
	data, err := readCredentials(credentialsFile)
	if err != nil {
		return "", err
	}
	var key struct {
		Type        string `json:"type"`
		ClientEmail string `json:"client_email"`
	}
	if err := json.Unmarshal(data, &key); err != nil {
		return "", fmt.Errorf("failed to parse credentials: %w", err)
	}
	if key.Type != "service_account" || key.ClientEmail == "" {
		return "", fmt.Errorf("credentials file is not a service account key")
	}
	return key.ClientEmail, nil
}

func readCredentials(credentialsFile string) ([]byte, error) {
	if credentialsFile == "" {
		return nil, fmt.Errorf("no credentials file configured (set GOOGLE_CREDENTIALS_FILE)")
	}
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}
	return data, nil
}
