package drive

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/db"
)

// TargetDrive is the backup log target name for Drive uploads.
const TargetDrive = "drive"

// BackupLog remembers which Drive file holds the backup.
type BackupLog interface {
	LogBackup(ctx context.Context, target, location string) error
	GetLatestBackup(ctx context.Context, target string) (*db.BackupRecord, error)
}

// Backup uploads exported state files to a Drive folder, keeping a single
// file per name.
type Backup struct {
	service DriveAPI
	repo    BackupLog
	logger  *zap.Logger
}

// NewBackup creates a new Drive backup service.
func NewBackup(service DriveAPI, repo BackupLog, logger *zap.Logger) *Backup {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backup{service: service, repo: repo, logger: logger}
}

// Upload sends localPath to Drive, replacing the previous upload of the same
// file name. It returns the Drive file ID.
func (b *Backup) Upload(ctx context.Context, localPath string) (string, error) {
	name := filepath.Base(localPath)

	existingID, err := b.existing(ctx, name)
	if err != nil {
		return "", err
	}

	fileID, err := b.service.UploadFile(ctx, localPath, name, existingID)
	if err != nil {
		return "", fmt.Errorf("failed to upload backup: %w", err)
	}
	if err := b.repo.LogBackup(ctx, TargetDrive, fileID); err != nil {
		b.logger.Warn("failed to record drive backup", zap.String("file_id", fileID), zap.Error(err))
	}
	return fileID, nil
}

// Download opens the most recent upload named name.
func (b *Backup) Download(ctx context.Context, name string) (io.ReadCloser, error) {
	id, err := b.existing(ctx, name)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, fmt.Errorf("no backup named %s in drive folder", name)
	}
	return b.service.DownloadFile(ctx, id)
}

// existing finds the Drive file to overwrite: the recorded one if it is
// still in the folder, otherwise the newest file with that name.
func (b *Backup) existing(ctx context.Context, name string) (string, error) {
	files, err := b.service.ListFiles(ctx, name)
	if err != nil {
		return "", fmt.Errorf("failed to list drive folder: %w", err)
	}
	if len(files) == 0 {
		return "", nil
	}

	rec, err := b.repo.GetLatestBackup(ctx, TargetDrive)
	if err != nil {
		b.logger.Warn("failed to read drive backup log", zap.Error(err))
	}
	if rec != nil {
		for _, f := range files {
			if f.ID == rec.Location {
				return f.ID, nil
			}
		}
	}
	return files[0].ID, nil
}
