package library

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"isodb/internal/fileutil"
	"isodb/internal/isodb"
	"isodb/internal/logging"
	"isodb/internal/manifest"
	"isodb/internal/textutil"
)

const lockFileName = ".isodb-mirror.lock"

// Report summarizes a full isotherm regeneration.
type Report struct {
	Articles              int
	ArticlesWithIsotherms int
	ListedIsotherms       int
	Downloaded            int
	Pauses                int
}

// RegenerateIsotherms mirrors every isotherm in the database into the library
// directory, one folder per article, and rewrites the DOI mapping CSV.
func (m *Mirror) RegenerateIsotherms(ctx context.Context) (*Report, error) {
	libraryDir := m.cfg.Paths.LibraryDir
	if err := os.MkdirAll(libraryDir, 0o755); err != nil {
		return nil, fmt.Errorf("create library directory: %w", err)
	}

	lock := flock.New(filepath.Join(libraryDir, lockFileName))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLibraryLocked, libraryDir)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			m.logger.Warn("failed to release library lock", logging.Error(err))
		}
	}()

	articles, err := m.source.Bibliography(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch bibliography: %w", err)
	}
	m.logger.Info("bibliography fetched", logging.Int("entries", len(articles)))

	listing, err := m.source.Isotherms(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch isotherm listing: %w", err)
	}
	perDOI := countByDOI(listing)
	m.logger.Info("isotherm listing fetched", logging.Int("isotherms", len(listing)))

	report := &Report{Articles: len(articles), ListedIsotherms: len(listing)}

	// The DOI mapping is buffered and replaces the previous file only once
	// every article has been mirrored.
	var mappingBuf bytes.Buffer
	mapping := csv.NewWriter(&mappingBuf)
	if err := mapping.Write([]string{"DOI", "DOI_Stub"}); err != nil {
		return report, fmt.Errorf("write doi mapping header: %w", err)
	}

	for _, article := range articles {
		if len(article.Isotherms) == 0 {
			continue
		}
		report.ArticlesWithIsotherms++
		stub := textutil.SanitizeFileName(m.cfg.StubForDOI(article.DOI))
		if stub == "" {
			return report, fmt.Errorf("doi %q produces an empty folder name", article.DOI)
		}
		if listed := perDOI[strings.ToLower(article.DOI)]; listed != len(article.Isotherms) {
			m.logger.Warn("isotherm count differs between bibliography and listing",
				logging.String("doi", article.DOI),
				logging.Int("bibliography", len(article.Isotherms)),
				logging.Int("listing", listed))
		}
		if err := mapping.Write([]string{article.DOI, stub}); err != nil {
			return report, fmt.Errorf("write doi mapping: %w", err)
		}

		folder := filepath.Join(libraryDir, stub)
		for _, name := range article.Isotherms {
			rec, err := m.source.Isotherm(ctx, name)
			if err != nil {
				return report, fmt.Errorf("download isotherm %s: %w", name, err)
			}
			fileName := textutil.SanitizeFileName(isodb.IsothermFileName(name))
			path := filepath.Join(folder, fileName)
			if err := m.write(ctx, manifest.KindIsotherm, strings.TrimSuffix(fileName, ".json"), article.DOI, path, rec); err != nil {
				return report, err
			}
			report.Downloaded++
		}
		m.logger.Info("article mirrored",
			logging.String("doi", article.DOI),
			logging.String("folder", stub),
			logging.Int("isotherms", len(article.Isotherms)))

		if every := m.cfg.Library.PauseEvery; every > 0 && report.ArticlesWithIsotherms%every == 0 {
			report.Pauses++
			pause := time.Duration(m.cfg.Library.PauseSeconds) * time.Second
			m.logger.Debug("pausing between articles", logging.Duration("pause", pause))
			if err := m.sleep(ctx, pause); err != nil {
				return report, err
			}
		}
	}

	mapping.Flush()
	if err := mapping.Error(); err != nil {
		return report, fmt.Errorf("flush doi mapping: %w", err)
	}
	if err := fileutil.WriteAtomic(m.cfg.Paths.DOIMappingPath, mappingBuf.Bytes()); err != nil {
		return report, fmt.Errorf("write doi mapping: %w", err)
	}
	m.logger.Info("isotherm library regenerated",
		logging.Int("articles_with_isotherms", report.ArticlesWithIsotherms),
		logging.Int("downloaded", report.Downloaded))
	return report, nil
}

func countByDOI(listing []isodb.IsothermSummary) map[string]int {
	counts := make(map[string]int, len(listing))
	for _, item := range listing {
		counts[strings.ToLower(item.DOI)]++
	}
	return counts
}
