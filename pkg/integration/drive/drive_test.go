package drive

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mklimuk/semester-pilot/pkg/db"
)

// mockDriveAPI is a test double for DriveAPI.
type mockDriveAPI struct {
	files        []FileInfo
	uploadedIDs  map[string]string // localPath -> id
	updatedFiles map[string]bool   // fileID -> true
	downloads    map[string]string // fileID -> content
}

func newMockDriveAPI() *mockDriveAPI {
	return &mockDriveAPI{
		uploadedIDs:  make(map[string]string),
		updatedFiles: make(map[string]bool),
		downloads:    make(map[string]string),
	}
}

func (m *mockDriveAPI) ListFiles(_ context.Context, name string) ([]FileInfo, error) {
	var out []FileInfo
	for _, f := range m.files {
		if name == "" || f.Name == name {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *mockDriveAPI) UploadFile(_ context.Context, localPath, fileName, existingFileID string) (string, error) {
	if existingFileID != "" {
		m.updatedFiles[existingFileID] = true
		return existingFileID, nil
	}
	id := "drv-" + fileName
	m.uploadedIDs[localPath] = id
	m.files = append([]FileInfo{{ID: id, Name: fileName}}, m.files...)
	return id, nil
}

func (m *mockDriveAPI) DownloadFile(_ context.Context, fileID string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.downloads[fileID])), nil
}

func setupTestDB(t *testing.T) *db.Repository {
	t.Helper()
	database, err := db.NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := database.InitSchema(); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}
	return db.NewRepository(database)
}

func writeBackup(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "semester4_backup.json")
	if err := os.WriteFile(path, []byte(`{"currentWeek":1}`), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestUploadCreatesThenUpdates(t *testing.T) {
	api := newMockDriveAPI()
	repo := setupTestDB(t)
	b := NewBackup(api, repo, nil)
	ctx := context.Background()
	path := writeBackup(t)

	id, err := b.Upload(ctx, path)
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	if id != "drv-semester4_backup.json" {
		t.Errorf("unexpected id %q", id)
	}
	if len(api.updatedFiles) != 0 {
		t.Errorf("first upload should create, got updates %v", api.updatedFiles)
	}

	id2, err := b.Upload(ctx, path)
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if id2 != id || !api.updatedFiles[id] {
		t.Errorf("second upload should update %s, got %s (updates %v)", id, id2, api.updatedFiles)
	}

	rec, err := repo.GetLatestBackup(ctx, TargetDrive)
	if err != nil || rec == nil || rec.Location != id {
		t.Errorf("expected backup log for %s, got %+v, %v", id, rec, err)
	}
}

func TestUploadPrefersRecordedFile(t *testing.T) {
	api := newMockDriveAPI()
	api.files = []FileInfo{
		{ID: "newer-copy", Name: "semester4_backup.json"},
		{ID: "recorded", Name: "semester4_backup.json"},
	}
	repo := setupTestDB(t)
	ctx := context.Background()
	if err := repo.LogBackup(ctx, TargetDrive, "recorded"); err != nil {
		t.Fatal(err)
	}

	if _, err := NewBackup(api, repo, nil).Upload(ctx, writeBackup(t)); err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !api.updatedFiles["recorded"] || api.updatedFiles["newer-copy"] {
		t.Errorf("expected recorded file to be updated, got %v", api.updatedFiles)
	}
}

func TestDownload(t *testing.T) {
	api := newMockDriveAPI()
	api.files = []FileInfo{{ID: "f1", Name: "semester4_backup.json"}}
	api.downloads["f1"] = `{"currentWeek":3}`
	b := NewBackup(api, setupTestDB(t), nil)

	rc, err := b.Download(context.Background(), "semester4_backup.json")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != `{"currentWeek":3}` {
		t.Errorf("content = %q", data)
	}

	if _, err := b.Download(context.Background(), "other.json"); err == nil {
		t.Error("expected error for missing backup")
	}
}
