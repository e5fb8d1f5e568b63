// Package history keeps a local git log of every saved snapshot so earlier
// states can be listed and recovered. Nothing is ever pushed anywhere.
package history

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
)

const snapshotFile = "snapshot.json"

// Entry is one recorded snapshot.
type Entry struct {
	Hash    string
	Message string
	When    time.Time
}

// Repo is a git repository holding snapshot versions.
type Repo struct {
	mu     sync.Mutex
	dir    string
	repo   *git.Repository
	logger zerolog.Logger
	now    func() time.Time
}

// Open opens the repository in dir, initializing it on first use.
func Open(dir string, logger zerolog.Logger) (*Repo, error) {
	repo, err := git.PlainOpen(dir)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history dir: %w", err)
		}
		repo, err = git.PlainInit(dir, false)
	}
	if err != nil {
		return nil, fmt.Errorf("open history repo: %w", err)
	}
	return &Repo{dir: dir, repo: repo, logger: logger, now: time.Now}, nil
}

// Record commits payload if it differs from the last recorded version.
// It reports whether a commit was made.
func (r *Repo) Record(payload string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	worktree, err := r.repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("open worktree: %w", err)
	}
	if err := os.WriteFile(filepath.Join(r.dir, snapshotFile), []byte(payload), 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", snapshotFile, err)
	}
	if _, err := worktree.Add(snapshotFile); err != nil {
		return false, fmt.Errorf("git add snapshot: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("git status: %w", err)
	}
	if status.IsClean() {
		return false, nil
	}

	when := r.now()
	hash, err := worktree.Commit("save "+when.Format("2006-01-02 15:04:05"), &git.CommitOptions{
		Author: &object.Signature{
			Name:  "hrboard",
			Email: "hrboard@localhost",
			When:  when,
		},
	})
	if err != nil {
		return false, fmt.Errorf("commit snapshot: %w", err)
	}
	r.logger.Debug().Str("hash", hash.String()[:7]).Msg("snapshot recorded")
	return true, nil
}

// Hook adapts Record to a flush hook, logging failures.
func (r *Repo) Hook() func(payload string) {
	return func(payload string) {
		if _, err := r.Record(payload); err != nil {
			r.logger.Warn().Err(err).Msg("history record failed")
		}
	}
}

// Log returns recorded versions, newest first. limit <= 0 means all.
func (r *Repo) Log(limit int) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	head, err := r.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve head: %w", err)
	}

	iter, err := r.repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	var entries []Entry
	err = iter.ForEach(func(c *object.Commit) error {
		entries = append(entries, Entry{Hash: c.Hash.String(), Message: c.Message, When: c.Author.When})
		if limit > 0 && len(entries) >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return entries, nil
}

// Show returns the payload recorded in the commit identified by rev,
// which may be a full hash, an abbreviated hash or a revision like HEAD~1.
func (r *Repo) Show(rev string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return "", fmt.Errorf("read commit %s: %w", rev, err)
	}
	file, err := commit.File(snapshotFile)
	if err != nil {
		return "", fmt.Errorf("load %s from commit: %w", snapshotFile, err)
	}
	return file.Contents()
}
