package sync

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"go.uber.org/zap"
)

// ErrNothingToCommit is returned when the worktree has no changes.
var ErrNothingToCommit = errors.New("nothing to commit")

// GitManager keeps the backup directory under version control.
type GitManager struct {
	RepoPath   string
	Push       bool
	SSHKeyPath string
	logger     *zap.Logger
	now        func() time.Time
}

// NewGitManager creates a new GitManager
func NewGitManager(repoPath string, push bool, sshKeyPath string, logger *zap.Logger) *GitManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GitManager{RepoPath: repoPath, Push: push, SSHKeyPath: sshKeyPath, logger: logger, now: time.Now}
}

// open returns the repository at RepoPath, initialising it on first use.
func (g *GitManager) open() (*git.Repository, error) {
	r, err := git.PlainOpen(g.RepoPath)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("failed to open repo: %w", err)
	}
	if err := os.MkdirAll(g.RepoPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create repo dir: %w", err)
	}
	r, err = git.PlainInit(g.RepoPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to init repo: %w", err)
	}
	g.logger.Info("initialised backup repository", zap.String("path", g.RepoPath))
	return r, nil
}

// Sync commits all changes and pushes to the remote when Push is set.
// It returns the new commit hash.
func (g *GitManager) Sync(message string) (plumbing.Hash, error) {
	r, err := g.open()
	if err != nil {
		return plumbing.ZeroHash, err
	}

	w, err := r.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to get worktree: %w", err)
	}

	if _, err := w.Add("."); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to add changes: %w", err)
	}

	status, err := w.Status()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to read status: %w", err)
	}
	if status.IsClean() {
		return plumbing.ZeroHash, ErrNothingToCommit
	}

	now := g.now()
	if message == "" {
		message = fmt.Sprintf("Backup: %s", now.Format(time.RFC3339))
	}

	hash, err := w.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Semester Pilot",
			Email: "pilot@semester.local",
			When:  now,
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("failed to commit: %w", err)
	}

	if !g.Push {
		return hash, nil
	}
	if err := g.push(r); err != nil {
		return hash, err
	}
	return hash, nil
}

func (g *GitManager) push(r *git.Repository) error {
	keyPath := g.SSHKeyPath
	if keyPath == "" {
		home, _ := os.UserHomeDir()
		keyPath = filepath.Join(home, ".ssh", "id_rsa")
	}

	opts := &git.PushOptions{}
	publicKeys, err := ssh.NewPublicKeysFromFile("git", keyPath, "")
	if err != nil {
		g.logger.Warn("could not load ssh key, pushing without explicit auth", zap.String("key", keyPath), zap.Error(err))
	} else {
		opts.Auth = publicKeys
	}

	if err := r.Push(opts); err != nil {
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return fmt.Errorf("failed to push: %w", err)
	}
	return nil
}
