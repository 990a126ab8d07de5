// Package gitlog reads recent commit messages from the repository that holds
// the curated isotherm library.
package gitlog

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultBranch is the branch read when none is given.
const DefaultBranch = "master"

// Commit is a single log entry.
type Commit struct {
	Hash    string
	Author  string
	When    time.Time
	Message string
}

// Recent returns up to limit commits reachable from branch, newest first.
// repoDir may point anywhere inside the working tree.
func Recent(repoDir, branch string, limit int) ([]Commit, error) {
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	branch = strings.TrimSpace(branch)
	if branch == "" {
		branch = DefaultBranch
	}

	repo, err := git.PlainOpenWithOptions(repoDir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository %s: %w", repoDir, err)
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return nil, fmt.Errorf("resolve branch %q: %w", branch, err)
	}
	iter, err := repo.Log(&git.LogOptions{From: ref.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	commits := make([]Commit, 0, limit)
	for len(commits) < limit {
		c, err := iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterate log: %w", err)
		}
		commits = append(commits, Commit{
			Hash:    c.Hash.String(),
			Author:  c.Author.Name,
			When:    c.Author.When,
			Message: c.Message,
		})
	}
	return commits, nil
}
