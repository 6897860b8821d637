package google

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNewHTTPClient_InvalidPath(t *testing.T) {
	_, err := NewHTTPClient(context.Background(), "/nonexistent/path.json", "https://www.googleapis.com/auth/drive.file")
	if err == nil {
		t.Fatal("expected error for nonexistent credentials file")
	}
}

func TestNewHTTPClient_EmptyPath(t *testing.T) {
	_, err := NewHTTPClient(context.Background(), "")
	if err == nil {
		t.Fatal("expected error when no credentials file is configured")
	}
}

func TestNewHTTPClient_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewHTTPClient(context.Background(), path, "https://www.googleapis.com/auth/drive.file")
	if err == nil {
		t.Fatal("expected error for invalid JSON credentials")
	}
}

func TestServiceAccountEmail(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(good, []byte(`{"type":"service_account","client_email":"pilot@proj.iam.gserviceaccount.com"}`), 0600); err != nil {
		t.Fatal(err)
	}
	email, err := ServiceAccountEmail(good)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email != "pilot@proj.iam.gserviceaccount.com" {
		t.Errorf("email = %q", email)
	}

	user := filepath.Join(dir, "user.json")
	if err := os.WriteFile(user, []byte(`{"type":"authorized_user"}`), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := ServiceAccountEmail(user); err == nil {
		t.Error("expected error for non service account key")
	}
}

func TestClientOption(t *testing.T) {
	if opt := ClientOption("/some/path.json"); opt == nil {
		t.Fatal("expected non-nil ClientOption")
	}
}
