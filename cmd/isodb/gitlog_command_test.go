package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func TestGitLogPrintsRecentMessages(t *testing.T) {
	env := setupCLITestEnv(t)
	repoDir := filepath.Join(env.baseDir, "repo")
	repo, err := git.PlainInit(repoDir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	when := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	for _, msg := range []string{"first isotherm", "second isotherm", "third isotherm"} {
		name := strings.ReplaceAll(msg, " ", "_") + ".json"
		if err := os.WriteFile(filepath.Join(repoDir, name), []byte("{}\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("Add: %v", err)
		}
		when = when.Add(time.Minute)
		if _, err := wt.Commit(msg, &git.CommitOptions{
			Author: &object.Signature{Name: "Curator", Email: "curator@example.com", When: when},
		}); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	}

	out, _, err := runCLI(t, []string{"git-log", "--repo", repoDir, "-n", "2"}, env.configPath)
	if err != nil {
		t.Fatalf("git-log: %v", err)
	}
	if out != "third isotherm\nsecond isotherm\n" {
		t.Fatalf("unexpected output %q", out)
	}

	out, _, err = runCLI(t, []string{"git-log", "--repo", repoDir, "--json"}, env.configPath)
	if err != nil {
		t.Fatalf("git-log --json: %v", err)
	}
	var commits []commitJSON
	if err := json.Unmarshal([]byte(out), &commits); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(commits) != 3 || commits[2].Message != "first isotherm" || commits[0].Author != "Curator" {
		t.Fatalf("unexpected commits: %+v", commits)
	}
}

func TestGitLogUnknownBranch(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := git.PlainInit(filepath.Join(env.baseDir, "empty"), false); err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	_, _, err := runCLI(t, []string{"git-log", "--repo", filepath.Join(env.baseDir, "empty"), "--branch", "nope"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for missing branch")
	}
}
