package drive

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	googleauth "github.com/mklimuk/semester-pilot/pkg/integration/google"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// FileInfo is a backup file in the Drive folder.
type FileInfo struct {
	ID         string
	Name       string
	ModifiedAt time.Time
}

// DriveAPI is the interface used by Backup for testability.
type DriveAPI interface {
	ListFiles(ctx context.Context, name string) ([]FileInfo, error)
	UploadFile(ctx context.Context, localPath, fileName, existingFileID string) (string, error)
	DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error)
}

// Service wraps the Google Drive API.
type Service struct {
	srv      *gdrive.Service
	folderID string
}

// NewService creates a Drive service limited to files it created, using
// service account credentials.
func NewService(ctx context.Context, credentialsFile, folderID string) (*Service, error) {
	if folderID == "" {
		return nil, fmt.Errorf("no drive folder configured (set DRIVE_FOLDER_ID)")
	}
	client, err := googleauth.NewHTTPClient(ctx, credentialsFile, gdrive.DriveFileScope)
	if err != nil {
		return nil, err
	}
	srv, err := gdrive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &Service{srv: srv, folderID: folderID}, nil
}

// appTag marks files uploaded by sempilot. Listing only returns tagged
// files so unrelated documents in a shared folder are never overwritten.
var appTag = map[string]string{"app": "sempilot"}

const backupMimeType = "application/json"

// ListFiles returns the backups in the configured folder named name, newest
// first. An empty name lists every backup.
func (s *Service) ListFiles(ctx context.Context, name string) ([]FileInfo, error) {
	query := fmt.Sprintf("'%s' in parents and trashed = false and appProperties has { key='app' and value='%s' }",
		s.folderID, appTag["app"])
	if name != "" {
		query += fmt.Sprintf(" and name = '%s'", strings.ReplaceAll(name, "'", "\\'"))
	}

	var result []FileInfo
	err := s.srv.Files.List().
		Q(query).
		Fields("nextPageToken, files(id, name, modifiedTime)").
		OrderBy("modifiedTime desc").
		Pages(ctx, func(page *gdrive.FileList) error {
			for _, f := range page.Files {
				modTime, _ := time.Parse(time.RFC3339, f.ModifiedTime)
				result = append(result, FileInfo{
					ID:         f.Id,
					Name:       f.Name,
					ModifiedAt: modTime,
				})
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return result, nil
}

// UploadFile sends the exported state at localPath. A non-empty
// existingFileID is overwritten in place so the folder keeps one file and
// Drive keeps the revisions.
func (s *Service) UploadFile(ctx context.Context, localPath, fileName, existingFileID string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	meta := &gdrive.File{Name: fileName, MimeType: backupMimeType, AppProperties: appTag}
	if existingFileID != "" {
		updated, err := s.srv.Files.Update(existingFileID, meta).Media(f).Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to update %s: %w", fileName, err)
		}
		return updated.Id, nil
	}

	meta.Parents = []string{s.folderID}
	created, err := s.srv.Files.Create(meta).Media(f).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", fileName, err)
	}
	return created.Id, nil
}

// DownloadFile opens the content of fileID. The caller closes it.
func (s *Service) DownloadFile(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := s.srv.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", fileID, err)
	}
	return resp.Body, nil
}
