package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mklimuk/semester-pilot/pkg/integration/drive"
	"github.com/mklimuk/semester-pilot/pkg/model"
	"github.com/mklimuk/semester-pilot/pkg/persist"
	gitsync "github.com/mklimuk/semester-pilot/pkg/sync"
	"github.com/mklimuk/semester-pilot/pkg/ui"
)

const targetLocal = "local"

type gitSyncer interface {
	Sync(message string) (plumbing.Hash, error)
}

// newGitSyncer and newDriveAPI are swapped in tests.
var newGitSyncer = func(a *app) gitSyncer {
	return gitsync.NewGitManager(a.cfg.Backup.Dir, a.cfg.Backup.GitPush, a.cfg.Backup.SSHKey, a.logger)
}

var newDriveAPI = func(ctx context.Context, a *app) (drive.DriveAPI, error) {
	if a.cfg.Google.CredentialsFile == "" {
		return nil, errors.New("GOOGLE_CREDENTIALS_FILE is not set")
	}
	return drive.NewService(ctx, a.cfg.Google.CredentialsFile, a.cfg.Google.DriveFolderID)
}

type backupOptions struct {
	git   bool
	drive bool
}

type backupResult struct {
	Path      string
	Commit    string
	Unchanged bool
	DriveID   string
}

// runBackup exports the state into the backup directory and optionally
// commits it and uploads it. The local file is always written first.
func runBackup(ctx context.Context, a *app, opts backupOptions) (*backupResult, error) {
	a.store.Refresh(ctx)
	s := a.store.Snapshot()
	res := &backupResult{Path: filepath.Join(a.cfg.Backup.Dir, persist.BackupFileName)}
	if err := persist.ExportFile(res.Path, s); err != nil {
		return nil, err
	}
	if err := a.repo.LogBackup(ctx, targetLocal, res.Path); err != nil {
		a.logger.Warn("failed to record local backup", zap.Error(err))
	}

	if opts.git {
		hash, err := newGitSyncer(a).Sync(fmt.Sprintf("Backup week %d", s.CurrentWeek))
		switch {
		case errors.Is(err, gitsync.ErrNothingToCommit):
			res.Unchanged = true
		case err != nil:
			return res, fmt.Errorf("failed to commit backup: %w", err)
		default:
			res.Commit = hash.String()
			if err := a.repo.LogBackup(ctx, "git", res.Commit); err != nil {
				a.logger.Warn("failed to record git backup", zap.Error(err))
			}
		}
	}

	if opts.drive {
		api, err := newDriveAPI(ctx, a)
		if err != nil {
			return res, err
		}
		id, err := drive.NewBackup(api, a.repo, a.logger).Upload(ctx, res.Path)
		if err != nil {
			return res, err
		}
		res.DriveID = id
	}
	return res, nil
}

// loadBackup reads the exported state back from the backup directory or
// from Drive. The document is validated like any import.
func loadBackup(ctx context.Context, a *app, fromDrive bool) (*model.RootState, error) {
	if !fromDrive {
		return persist.ImportFile(filepath.Join(a.cfg.Backup.Dir, persist.BackupFileName))
	}
	api, err := newDriveAPI(ctx, a)
	if err != nil {
		return nil, err
	}
	rc, err := drive.NewBackup(api, a.repo, a.logger).Download(ctx, persist.BackupFileName)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return persist.DecodeImport(rc)
}

func newBackupCmd() *cobra.Command {
	var opts backupOptions
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export the state into the backup directory, optionally to git and Drive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				res, err := runBackup(ctx, a, opts)
				w := out(cmd)
				if res != nil {
					fmt.Fprintln(w, ui.Good.Render(ui.IconDone+" saved"), res.Path)
					if res.Commit != "" {
						fmt.Fprintln(w, ui.LabelValue("git", res.Commit[:7]))
					}
					if res.Unchanged {
						fmt.Fprintln(w, ui.Muted.Render("git: nothing changed since the last backup"))
					}
					if res.DriveID != "" {
						fmt.Fprintln(w, ui.LabelValue("drive", res.DriveID))
					}
				}
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&opts.git, "git", false, "commit the backup directory")
	cmd.Flags().BoolVar(&opts.drive, "drive", false, "upload to the configured Drive folder")
	cmd.AddCommand(newRestoreCmd())
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var fromDrive, yes bool
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the state with the latest backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				source := filepath.Join(a.cfg.Backup.Dir, persist.BackupFileName)
				if fromDrive {
					source = "drive"
				}
				st, err := loadBackup(ctx, a, fromDrive)
				if err != nil {
					return err
				}
				if !confirm(cmd, yes, fmt.Sprintf("Replace all current data with the backup from %s (week %d)?", source, st.CurrentWeek)) {
					fmt.Fprintln(out(cmd), ui.Muted.Render("cancelled"))
					return nil
				}
				if err := a.store.ReplaceState(ctx, st); err != nil {
					return err
				}
				fmt.Fprintln(out(cmd), ui.Good.Render(ui.IconDone+" restored"), ui.LabelValue("week", st.CurrentWeek))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&fromDrive, "drive", false, "download the backup from Drive")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}
