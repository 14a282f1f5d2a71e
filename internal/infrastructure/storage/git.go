package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// GitStorage writes exports into the worktree of a local git repository and
// commits each export as one revision
type GitStorage struct {
	basePath string
	author   string

	mu   sync.Mutex
	repo *git.Repository
}

// NewGitStorage opens the repository at basePath, initializing it when missing
func NewGitStorage(basePath, author string) (*GitStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create repository directory: %w", err)
	}
	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}

	repo, err := git.PlainOpen(absPath)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		repo, err = git.PlainInit(absPath, false)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open repository: %w", err)
	}
	if author == "" {
		author = "confdash"
	}
	return &GitStorage{basePath: absPath, author: author, repo: repo}, nil
}

// Type implements service.ExportStorage
func (s *GitStorage) Type() string {
	return string(StorageTypeGit)
}

// Put writes data to key inside the worktree and stages it
func (s *GitStorage) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rel, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.basePath, filepath.FromSlash(rel))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	wt, err := s.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}
	if _, err := wt.Add(rel); err != nil {
		return "", fmt.Errorf("failed to stage %s: %w", rel, err)
	}
	return full, nil
}

// Commit implements service.SnapshotCommitter
func (s *GitStorage) Commit(ctx context.Context, message, email string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	wt, err := s.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return "", fmt.Errorf("failed to read status: %w", err)
	}
	if status.IsClean() {
		return "", nil
	}

	if email == "" {
		email = s.author + "@localhost"
	}
	hash, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  s.author,
			Email: email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to commit export: %w", err)
	}
	return hash.String(), nil
}

// cleanKey turns key into a slash separated path that stays inside the worktree
func cleanKey(key string) (string, error) {
	rel := filepath.ToSlash(filepath.Clean(filepath.FromSlash(strings.TrimLeft(key, "/"))))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, ".git/") || rel == ".git" {
		return "", fmt.Errorf("invalid storage key: %q", key)
	}
	return rel, nil
}
