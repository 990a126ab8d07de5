package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"isodb/internal/config"
	"isodb/internal/fileutil"
	"isodb/internal/isodb"
	"isodb/internal/isotherm"
	"isodb/internal/jsonfile"
	"isodb/internal/logging"
	"isodb/internal/manifest"
	"isodb/internal/textutil"
)

// ErrLibraryLocked reports that another mirror run holds the library lock.
var ErrLibraryLocked = errors.New("library is locked by another run")

// Source is the subset of the ISODB API the mirror reads from.
type Source interface {
	Isotherm(ctx context.Context, name string) (isotherm.Record, error)
	Isotherms(ctx context.Context) ([]isodb.IsothermSummary, error)
	Bibliography(ctx context.Context) ([]isodb.Article, error)
	Gases(ctx context.Context) ([]isotherm.Adsorbate, error)
	Materials(ctx context.Context) ([]isotherm.Adsorbent, error)
}

// Recorder stores manifest entries for written files.
type Recorder interface {
	Record(ctx context.Context, entry manifest.Entry) error
}

// Mirror writes ISODB content to the configured library directories.
type Mirror struct {
	cfg      *config.Config
	source   Source
	recorder Recorder
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithManifest records every written file in r.
func WithManifest(r Recorder) Option {
	return func(m *Mirror) {
		m.recorder = r
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mirror) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a Mirror reading from source.
func New(cfg *config.Config, source Source, opts ...Option) (*Mirror, error) {
	if cfg == nil {
		return nil, errors.New("config required")
	}
	if source == nil {
		return nil, errors.New("isodb source required")
	}
	m := &Mirror{
		cfg:    cfg,
		source: source,
		logger: logging.NewNop(),
		sleep:  sleepContext,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "library")
	return m, nil
}

// DownloadIsotherm fetches one isotherm and writes it into dir as
// <name>.json. It returns the written path.
func (m *Mirror) DownloadIsotherm(ctx context.Context, name, dir string) (string, error) {
	fileName := textutil.SanitizeFileName(isodb.IsothermFileName(name))
	if fileName == "" || fileName == ".json" {
		return "", errors.New("isotherm name must not be empty")
	}
	rec, err := m.source.Isotherm(ctx, name)
	if err != nil {
		return "", fmt.Errorf("download isotherm %s: %w", name, err)
	}
	path := filepath.Join(dir, fileName)
	doi, _ := rec["DOI"].(string)
	if err := m.write(ctx, manifest.KindIsotherm, strings.TrimSuffix(fileName, ".json"), doi, path, rec); err != nil {
		return "", err
	}
	m.logger.Info("isotherm downloaded", logging.String("path", path))
	return path, nil
}

// write stores value canonically and records it in the manifest.
func (m *Mirror) write(ctx context.Context, kind manifest.Kind, key, doi, path string, value any) error {
	if err := jsonfile.Write(path, value); err != nil {
		return err
	}
	return recordFile(ctx, m.recorder, manifest.Entry{Kind: kind, Key: key, DOI: doi, Path: path})
}

// recordFile fills in the digest and fetch time of entry and stores it. A nil
// recorder is a no-op.
func recordFile(ctx context.Context, recorder Recorder, entry manifest.Entry) error {
	if recorder == nil {
		return nil
	}
	sum, err := fileutil.SHA256(entry.Path)
	if err != nil {
		return fmt.Errorf("hash %s: %w", entry.Path, err)
	}
	entry.SHA256 = sum
	entry.FetchedAt = time.Now()
	if err := recorder.Record(ctx, entry); err != nil {
		return fmt.Errorf("record %s %s in manifest: %w", entry.Kind, entry.Key, err)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
