package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"isodb/internal/gitlog"
)

type commitJSON struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	When    string `json:"when"`
	Message string `json:"message"`
}

func newGitLogCommand(ctx *commandContext) *cobra.Command {
	var branch string
	var limit int
	var repoDir string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "git-log",
		Short: "Show recent commit messages of the library repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := strings.TrimSpace(repoDir)
			if dir == "" {
				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				dir = cfg.Paths.RepoDir
			}
			commits, err := gitlog.Recent(dir, branch, limit)
			if err != nil {
				return err
			}
			if asJSON {
				payload := make([]commitJSON, 0, len(commits))
				for _, c := range commits {
					payload = append(payload, commitJSON{
						Hash:    c.Hash,
						Author:  c.Author,
						When:    c.When.Format("2006-01-02T15:04:05Z07:00"),
						Message: c.Message,
					})
				}
				return writeJSON(cmd, payload)
			}
			out := cmd.OutOrStdout()
			for _, c := range commits {
				fmt.Fprintln(out, strings.TrimRight(c.Message, "\n"))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "b", gitlog.DefaultBranch, "Branch to read")
	cmd.Flags().IntVarP(&limit, "count", "n", 5, "Number of commits to show")
	cmd.Flags().StringVar(&repoDir, "repo", "", "Repository directory (defaults to paths.repo_dir)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of plain messages")
	return cmd
}
