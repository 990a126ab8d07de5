package gitlog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initRepo(t *testing.T, commits int) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= commits; i++ {
		name := fmt.Sprintf("iso%d.json", i)
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("Add: %v", err)
		}
		_, err := wt.Commit(fmt.Sprintf("add isotherm %d\n", i), &git.CommitOptions{
			Author: &object.Signature{Name: "Curator", Email: "curator@example.com", When: base.Add(time.Duration(i) * time.Minute)},
		})
		if err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}
	return dir
}

func TestRecentReturnsNewestFirst(t *testing.T) {
	dir := initRepo(t, 7)

	commits, err := Recent(dir, "", 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(commits) != 5 {
		t.Fatalf("expected 5 commits, got %d", len(commits))
	}
	if commits[0].Message != "add isotherm 7\n" || commits[4].Message != "add isotherm 3\n" {
		t.Fatalf("unexpected order: %q ... %q", commits[0].Message, commits[4].Message)
	}
	if commits[0].Author != "Curator" || commits[0].Hash == "" {
		t.Fatalf("unexpected commit: %+v", commits[0])
	}
}

func TestRecentFromSubdirectory(t *testing.T) {
	dir := initRepo(t, 2)
	sub := filepath.Join(dir, "JSON_Library")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	commits, err := Recent(sub, DefaultBranch, 5)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(commits) != 2 {
		t.Fatalf("expected 2 commits, got %d", len(commits))
	}
}

func TestRecentErrors(t *testing.T) {
	dir := initRepo(t, 1)
	if _, err := Recent(dir, "no-such-branch", 5); err == nil {
		t.Fatal("expected error for unknown branch")
	}
	if _, err := Recent(t.TempDir(), "", 5); err == nil {
		t.Fatal("expected error outside a repository")
	}
	if _, err := Recent(dir, "", 0); err == nil {
		t.Fatal("expected error for non-positive limit")
	}
}
