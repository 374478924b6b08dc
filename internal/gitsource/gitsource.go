// Package gitsource keeps local checkouts of remote deck repositories.
package gitsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
)

// Sync clones url into localPath if nothing is there yet, or pulls the latest
// changes into the existing checkout.
func Sync(ctx context.Context, url, localPath string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	_, err := os.Stat(localPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Info("cloning deck repository", "url", url, "path", localPath)
		if _, err := git.PlainCloneContext(ctx, localPath, false, &git.CloneOptions{URL: url}); err != nil {
			return fmt.Errorf("clone %s: %w", url, err)
		}
	case err == nil:
		logger.Info("pulling deck repository", "path", localPath)
		repo, err := git.PlainOpen(localPath)
		if err != nil {
			return fmt.Errorf("open repo at %s: %w", localPath, err)
		}
		worktree, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("worktree for %s: %w", localPath, err)
		}
		err = worktree.PullContext(ctx, &git.PullOptions{RemoteName: "origin"})
		if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
			return fmt.Errorf("pull %s: %w", localPath, err)
		}
	default:
		return fmt.Errorf("stat %s: %w", localPath, err)
	}
	return nil
}

// IsRemote reports whether src names a git remote rather than a local path.
func IsRemote(src string) bool {
	if strings.HasPrefix(src, "git@") {
		return true
	}
	u, err := url.Parse(src)
	return err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != ""
}

// LocalPath maps a git URL to its checkout directory under baseDir, as
// baseDir/host/owner/repo. Both https and scp-like ssh URLs are accepted.
func LocalPath(baseDir, repoURL string) (string, error) {
	u, err := url.Parse(repoURL)
	if err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != "" {
		return filepath.Join(baseDir, u.Host, strings.TrimSuffix(u.Path, ".git")), nil
	}
	// user@host:owner/repo.git
	if at := strings.Index(repoURL, "@"); at >= 0 {
		hostAndPath := repoURL[at+1:]
		if host, path, ok := strings.Cut(hostAndPath, ":"); ok && host != "" && path != "" {
			return filepath.Join(baseDir, host, strings.TrimSuffix(path, ".git")), nil
		}
	}
	return "", fmt.Errorf("could not parse git URL: %s", repoURL)
}
