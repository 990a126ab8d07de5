package library

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"isodb/internal/isotherm"
	"isodb/internal/jsonfile"
	"isodb/internal/logging"
	"isodb/internal/textutil"
)

const generatedSuffix = ".bibliography.json"

// Generated describes one bibliography entry built from local isotherm files.
type Generated struct {
	DOI       string
	Path      string
	Isotherms int
}

type collation struct {
	doi             string
	isotherms       map[string]struct{}
	adsorbates      map[string]map[string]any
	adsorbents      map[string]map[string]any
	temperatures    map[float64]any
	categories      map[string]struct{}
	pressureUnits   map[string]struct{}
	adsorptionUnits map[string]struct{}
}

// GenerateBibliography collates the isotherm files under folder into one
// bibliography entry per DOI and writes each entry next to them as
// <doi stub>.bibliography.json. Files without a DOI are skipped.
func (m *Mirror) GenerateBibliography(ctx context.Context, folder string) ([]Generated, error) {
	byDOI := map[string]*collation{}
	var order []string

	err := filepath.WalkDir(folder, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".json") || strings.HasSuffix(path, generatedSuffix) {
			return nil
		}
		doc, err := jsonfile.ReadObject(path)
		if err != nil {
			return err
		}
		doi, _ := doc["DOI"].(string)
		doi = strings.TrimSpace(doi)
		if doi == "" {
			m.logger.Warn("skipping isotherm without DOI", logging.String(logging.FieldFilename, path))
			return nil
		}
		key := strings.ToLower(doi)
		c, ok := byDOI[key]
		if !ok {
			c = newCollation(doi)
			byDOI[key] = c
			order = append(order, key)
		}
		c.add(path, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collate %s: %w", folder, err)
	}

	sort.Strings(order)
	generated := make([]Generated, 0, len(order))
	for _, key := range order {
		c := byDOI[key]
		stub := textutil.SanitizeFileName(m.cfg.StubForDOI(c.doi))
		if stub == "" {
			return generated, fmt.Errorf("doi %q produces an empty file name", c.doi)
		}
		path := filepath.Join(folder, stub+generatedSuffix)
		if err := jsonfile.Write(path, c.entry()); err != nil {
			return generated, err
		}
		generated = append(generated, Generated{DOI: c.doi, Path: path, Isotherms: len(c.isotherms)})
	}
	m.logger.Info("bibliography generated", logging.String("folder", folder), logging.Int("entries", len(generated)))
	return generated, nil
}

func newCollation(doi string) *collation {
	return &collation{
		doi:             doi,
		isotherms:       map[string]struct{}{},
		adsorbates:      map[string]map[string]any{},
		adsorbents:      map[string]map[string]any{},
		temperatures:    map[float64]any{},
		categories:      map[string]struct{}{},
		pressureUnits:   map[string]struct{}{},
		adsorptionUnits: map[string]struct{}{},
	}
}

func (c *collation) add(path string, doc map[string]any) {
	filename, _ := doc[isotherm.KeyFilename].(string)
	if strings.TrimSpace(filename) == "" {
		filename = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	c.isotherms[filename] = struct{}{}

	if list, ok := doc[isotherm.KeyAdsorbates].([]any); ok {
		for _, item := range list {
			obj, ok := item.(map[string]any)
			if !ok {
				continue
			}
			if key, ok := isotherm.Adsorbate(obj).InChIKey(); ok {
				c.adsorbates[key] = pick(obj, isotherm.KeyInChIKey, isotherm.KeyName)
			}
		}
	}
	if obj, ok := doc[isotherm.KeyAdsorbent].(map[string]any); ok {
		if key, ok := isotherm.Adsorbent(obj).Hashkey(); ok {
			c.adsorbents[key] = pick(obj, isotherm.KeyHashkey, isotherm.KeyName)
		}
	}
	if raw, ok := doc["temperature"]; ok {
		if n, ok := raw.(json.Number); ok {
			if f, err := n.Float64(); err == nil {
				c.temperatures[f] = n
			}
		}
	}
	addString(c.categories, doc["category"])
	addString(c.pressureUnits, doc[isotherm.KeyPressureUnits])
	addString(c.adsorptionUnits, doc[isotherm.KeyAdsorptionUnits])
}

func (c *collation) entry() map[string]any {
	isotherms := make([]any, 0, len(c.isotherms))
	for _, name := range sortedKeys(c.isotherms) {
		isotherms = append(isotherms, map[string]any{isotherm.KeyFilename: name})
	}
	temps := make([]float64, 0, len(c.temperatures))
	for t := range c.temperatures {
		temps = append(temps, t)
	}
	sort.Float64s(temps)
	temperatures := make([]any, 0, len(temps))
	for _, t := range temps {
		temperatures = append(temperatures, c.temperatures[t])
	}
	return map[string]any{
		"DOI":             c.doi,
		"isotherms":       isotherms,
		"adsorbates":      sortedObjects(c.adsorbates),
		"adsorbents":      sortedObjects(c.adsorbents),
		"temperatures":    temperatures,
		"categories":      stringList(c.categories),
		"pressureUnits":   stringList(c.pressureUnits),
		"adsorptionUnits": stringList(c.adsorptionUnits),
	}
}

func pick(obj map[string]any, keys ...string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		if value, ok := obj[key]; ok {
			out[key] = value
		}
	}
	return out
}

func addString(set map[string]struct{}, raw any) {
	if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
		set[strings.TrimSpace(s)] = struct{}{}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedObjects(m map[string]map[string]any) []any {
	out := make([]any, 0, len(m))
	for _, key := range sortedKeys(m) {
		out = append(out, m[key])
	}
	return out
}

func stringList(set map[string]struct{}) []any {
	out := make([]any, 0, len(set))
	for _, value := range sortedKeys(set) {
		out = append(out, value)
	}
	return out
}
