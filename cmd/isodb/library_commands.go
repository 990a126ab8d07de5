package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"isodb/internal/library"
	"isodb/internal/manifest"
)

func newDownloadIsothermCommand(ctx *commandContext) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "download-isotherm <filename>",
		Short: "Download a single isotherm from ISODB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withMirror(func(mirror *library.Mirror) error {
				path, err := mirror.DownloadIsotherm(ctx.runContext(cmd), args[0], dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "Directory to write the isotherm into")
	return cmd
}

func newRegenerateCommands(ctx *commandContext) []*cobra.Command {
	regenerateLibrary := &cobra.Command{
		Use:   "regenerate-library",
		Short: "Mirror every isotherm into the local library, one folder per DOI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withMirror(func(mirror *library.Mirror) error {
				report, err := mirror.RegenerateIsotherms(ctx.runContext(cmd))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Articles: %d (%d with isotherms)\n", report.Articles, report.ArticlesWithIsotherms)
				fmt.Fprintf(out, "Isotherms downloaded: %d of %d listed\n", report.Downloaded, report.ListedIsotherms)
				return nil
			})
		},
	}

	return []*cobra.Command{
		regenerateLibrary,
		newCatalogCommand(ctx, "regenerate-adsorbents", "Mirror every adsorbent material record", "adsorbents",
			func(m *library.Mirror, cmd *cobra.Command) (int, error) {
				return m.RegenerateAdsorbents(ctx.runContext(cmd))
			}),
		newCatalogCommand(ctx, "regenerate-adsorbates", "Mirror every adsorbate gas record", "adsorbates",
			func(m *library.Mirror, cmd *cobra.Command) (int, error) {
				return m.RegenerateAdsorbates(ctx.runContext(cmd))
			}),
		newCatalogCommand(ctx, "regenerate-bibliography", "Mirror every bibliography entry", "bibliography entries",
			func(m *library.Mirror, cmd *cobra.Command) (int, error) {
				return m.RegenerateBibliography(ctx.runContext(cmd))
			}),
	}
}

func newCatalogCommand(ctx *commandContext, use, short, noun string, run func(*library.Mirror, *cobra.Command) (int, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withMirror(func(mirror *library.Mirror) error {
				count, err := run(mirror, cmd)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d %s\n", count, noun)
				return nil
			})
		},
	}
}

func newGenerateBibliographyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "generate-bibliography <folder>",
		Short: "Build bibliography entries from local isotherm files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withMirror(func(mirror *library.Mirror) error {
				generated, err := mirror.GenerateBibliography(ctx.runContext(cmd), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(generated) == 0 {
					fmt.Fprintln(out, "No isotherms with a DOI found")
					return nil
				}
				for _, g := range generated {
					fmt.Fprintf(out, "%s: %d isotherm(s) -> %s\n", g.DOI, g.Isotherms, g.Path)
				}
				return nil
			})
		},
	}
}

func newLibraryCommand(ctx *commandContext) *cobra.Command {
	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "Inspect the local library manifest",
	}
	libraryCmd.AddCommand(newLibraryStatusCommand(ctx))
	libraryCmd.AddCommand(newLibraryListCommand(ctx))
	return libraryCmd
}

type kindSummaryJSON struct {
	Kind        string `json:"kind"`
	Files       int    `json:"files"`
	DOIs        int    `json:"dois"`
	LatestFetch string `json:"latest_fetch,omitempty"`
}

func newLibraryStatusCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize mirrored files by kind",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withManifest(func(store *manifest.Store) error {
				summaries, err := store.Summary(ctx.runContext(cmd))
				if err != nil {
					return err
				}
				if asJSON {
					payload := make([]kindSummaryJSON, 0, len(summaries))
					for _, s := range summaries {
						payload = append(payload, kindSummaryJSON{
							Kind:        string(s.Kind),
							Files:       s.Count,
							DOIs:        s.DOIs,
							LatestFetch: formatFetchTime(s.LatestFetch),
						})
					}
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				if len(summaries) == 0 {
					fmt.Fprintf(out, "Manifest %s is empty\n", store.Path())
					return nil
				}
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, []string{
						string(s.Kind),
						strconv.Itoa(s.Count),
						strconv.Itoa(s.DOIs),
						formatFetchTime(s.LatestFetch),
					})
				}
				table := renderTable(out, []string{"Kind", "Files", "DOIs", "Latest Fetch"}, rows,
					[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft})
				fmt.Fprintln(out, table)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newLibraryListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list <kind>",
		Short: "List mirrored files of one kind",
		Long:  "Kinds: isotherm, adsorbent, adsorbate, bibliography, novel_adsorbate.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := manifest.Kind(args[0])
			return ctx.withManifest(func(store *manifest.Store) error {
				entries, err := store.List(ctx.runContext(cmd), kind)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintf(out, "No %s entries\n", kind)
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, e := range entries {
					rows = append(rows, []string{e.Key, e.DOI, e.Path, formatFetchTime(e.FetchedAt)})
				}
				fmt.Fprintln(out, renderTable(out, []string{"Key", "DOI", "Path", "Fetched"}, rows, nil))
				return nil
			})
		},
	}
}

func formatFetchTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
