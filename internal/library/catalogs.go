package library

import (
	"context"
	"fmt"
	"path/filepath"

	"isodb/internal/logging"
	"isodb/internal/manifest"
	"isodb/internal/textutil"
)

// RegenerateAdsorbents writes one <hashkey>.json file per material. Entries
// without a hashkey are skipped. It returns the number of files written.
func (m *Mirror) RegenerateAdsorbents(ctx context.Context) (int, error) {
	materials, err := m.source.Materials(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch materials: %w", err)
	}
	written := 0
	for _, material := range materials {
		key, ok := material.Hashkey()
		if !ok {
			m.logger.Warn("skipping material without hashkey", logging.Any("material", material))
			continue
		}
		if err := m.writeCatalogEntry(ctx, manifest.KindAdsorbent, m.cfg.Paths.AdsorbentsDir, key, "", material); err != nil {
			return written, err
		}
		written++
	}
	m.logger.Info("adsorbents regenerated", logging.Int("files", written))
	return written, nil
}

// RegenerateAdsorbates writes one <InChIKey>.json file per gas. Entries
// without an InChIKey are skipped. It returns the number of files written.
func (m *Mirror) RegenerateAdsorbates(ctx context.Context) (int, error) {
	gases, err := m.source.Gases(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch gases: %w", err)
	}
	written := 0
	for _, gas := range gases {
		key, ok := gas.InChIKey()
		if !ok {
			m.logger.Warn("skipping gas without InChIKey", logging.Any("gas", gas))
			continue
		}
		if err := m.writeCatalogEntry(ctx, manifest.KindAdsorbate, m.cfg.Paths.AdsorbatesDir, key, "", gas); err != nil {
			return written, err
		}
		written++
	}
	m.logger.Info("adsorbates regenerated", logging.Int("files", written))
	return written, nil
}

// RegenerateBibliography writes one <doi stub>.json file per bibliography
// entry. It returns the number of files written.
func (m *Mirror) RegenerateBibliography(ctx context.Context) (int, error) {
	articles, err := m.source.Bibliography(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch bibliography: %w", err)
	}
	written := 0
	for _, article := range articles {
		stub := m.cfg.StubForDOI(article.DOI)
		if err := m.writeCatalogEntry(ctx, manifest.KindBibliography, m.cfg.Paths.BibliographyDir, stub, article.DOI, article.Entry); err != nil {
			return written, err
		}
		written++
	}
	m.logger.Info("bibliography regenerated", logging.Int("files", written))
	return written, nil
}

func (m *Mirror) writeCatalogEntry(ctx context.Context, kind manifest.Kind, dir, key, doi string, value any) error {
	name := textutil.SanitizeFileName(key)
	if name == "" {
		return fmt.Errorf("%s key %q produces an empty file name", kind, key)
	}
	return m.write(ctx, kind, key, doi, filepath.Join(dir, name+".json"), value)
}
