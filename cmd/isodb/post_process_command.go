package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"isodb/internal/isotherm"
	"isodb/internal/jsonfile"
	"isodb/internal/library"
	"isodb/internal/logging"
	"isodb/internal/manifest"
)

const defaultPostProcessOutput = "newfile.json"

func newPostProcessCommand(ctx *commandContext) *cobra.Command {
	var output string
	var printRecord bool

	cmd := &cobra.Command{
		Use:   "post-process <file>",
		Short: "Normalize a digitized isotherm into ISODB upload form",
		Long: `Resolve adsorbate and adsorbent identifiers, convert pressures to bar,
canonicalize the adsorption unit, drop non-positive points and prune
non-canonical keys. Adsorbates whose InChIKey is not yet in the database
are written to the curation directory for review.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			input := args[0]
			rec, err := readRecord(input)
			if err != nil {
				return err
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			recorder, closeManifest := openCurationRecorder(cfg.Paths.ManifestPath, logger)
			defer closeManifest()

			normalizer, err := isotherm.New(isotherm.Dependencies{
				Adsorbates:      client,
				Catalog:         client,
				Adsorbents:      client,
				AdsorptionUnits: client,
				PressureUnits:   isotherm.PressureUnitTable(cfg.PressureUnitFactors()),
				Novel:           library.NewCurationSink(cfg.Paths.CurationDir, recorder),
			}, cfg.Records.CanonicalKeys, logger)
			if err != nil {
				return err
			}

			result, err := normalizer.Normalize(ctx.runContext(cmd), filepath.Base(input), rec)
			if err != nil {
				return err
			}
			result.Record[isotherm.KeyFilename] = strings.TrimSuffix(filepath.Base(output), filepath.Ext(output))

			var writer isotherm.RecordWriter = jsonfile.Writer{}
			if err := writer.WriteRecord(output, result.Record); err != nil {
				return err
			}
			logger.Info("normalized isotherm written",
				logging.String("input", input),
				logging.String("output", output))

			out := cmd.OutOrStdout()
			if printRecord {
				data, err := jsonfile.Format(result.Record)
				if err != nil {
					return err
				}
				if _, err := out.Write(data); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Wrote %s\n", output)
			if result.DroppedPoints > 0 {
				fmt.Fprintf(out, "Dropped %d non-positive point(s)\n", result.DroppedPoints)
			}
			for _, adsorbate := range result.NovelAdsorbates {
				key, _ := adsorbate.InChIKey()
				fmt.Fprintf(out, "New adsorbate %s written to %s\n", key, cfg.Paths.CurationDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", defaultPostProcessOutput, "Destination for the normalized record")
	cmd.Flags().BoolVar(&printRecord, "print", false, "Print the normalized record to stdout")
	return cmd
}

// openCurationRecorder opens the manifest so novel adsorbates are listed by
// `library status`. Recording is optional: when the manifest cannot be opened
// the returned recorder is nil and curation files are still written.
func openCurationRecorder(path string, logger *slog.Logger) (library.Recorder, func()) {
	store, err := manifest.Open(path)
	if err != nil {
		logging.WarnWithContext(logger, "manifest unavailable; novel adsorbates will not be recorded", "manifest_open_failed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check paths.manifest_path"),
			logging.String(logging.FieldImpact, "curation files are written but not listed by library status"))
		return nil, func() {}
	}
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close manifest", logging.Error(err))
		}
	}
}

func readRecord(path string) (isotherm.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open isotherm: %w", err)
	}
	defer file.Close()
	rec, err := isotherm.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rec, nil
}

func newCleanJSONCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "clean-json <file>...",
		Short:       "Rewrite JSON files with sorted keys and four-space indentation",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, path := range args {
				if err := jsonfile.Clean(path); err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleaned %s\n", path)
			}
			return nil
		},
	}
}
