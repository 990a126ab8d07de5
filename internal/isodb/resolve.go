package isodb

import (
	"context"

	"isodb/internal/isotherm"
	"isodb/internal/textutil"
)

// Catalog fields compared during resolution, strongest first. A probe term
// matching an earlier field beats any match on a later one.
var (
	adsorbateFields = []string{isotherm.KeyInChIKey, isotherm.KeyName, "synonyms", "formula"}
	adsorbentFields = []string{isotherm.KeyHashkey, isotherm.KeyName, "synonyms", "formula"}
)

// ResolveAdsorbate implements isotherm.AdsorbateResolver. The returned
// adsorbate carries the catalog's InChIKey and name.
func (c *Client) ResolveAdsorbate(ctx context.Context, partial isotherm.Adsorbate) (isotherm.Adsorbate, bool, error) {
	gases, err := c.Gases(ctx)
	if err != nil {
		return nil, false, err
	}
	candidates := make([]map[string]any, len(gases))
	for i, gas := range gases {
		candidates[i] = gas
	}
	match, ok := bestMatch(candidates, adsorbateFields, partial)
	if !ok {
		return nil, false, nil
	}
	resolved := isotherm.Adsorbate{isotherm.KeyInChIKey: match[isotherm.KeyInChIKey]}
	if name, ok := isotherm.Adsorbate(match).Name(); ok {
		resolved[isotherm.KeyName] = name
	}
	return resolved, true, nil
}

// ResolveAdsorbent implements isotherm.AdsorbentResolver. The returned
// adsorbent carries the catalog's hashkey and name.
func (c *Client) ResolveAdsorbent(ctx context.Context, partial isotherm.Adsorbent) (isotherm.Adsorbent, bool, error) {
	materials, err := c.Materials(ctx)
	if err != nil {
		return nil, false, err
	}
	candidates := make([]map[string]any, len(materials))
	for i, material := range materials {
		candidates[i] = material
	}
	match, ok := bestMatch(candidates, adsorbentFields, partial)
	if !ok {
		return nil, false, nil
	}
	resolved := isotherm.Adsorbent{isotherm.KeyHashkey: match[isotherm.KeyHashkey]}
	if name, ok := isotherm.Adsorbent(match).Name(); ok {
		resolved[isotherm.KeyName] = name
	}
	return resolved, true, nil
}

// bestMatch returns the first candidate, in catalog order, that shares a term
// with the probe on the strongest field any candidate matches. Candidates
// without the identifying field (fields[0]) are never returned.
func bestMatch(candidates []map[string]any, fields []string, probe map[string]any) (map[string]any, bool) {
	probeTerms := make(map[string]struct{})
	for _, field := range fields {
		for _, term := range fieldTerms(probe, field) {
			probeTerms[term] = struct{}{}
		}
	}
	if len(probeTerms) == 0 {
		return nil, false
	}
	for _, field := range fields {
		for _, candidate := range candidates {
			if len(fieldTerms(candidate, fields[0])) == 0 {
				continue
			}
			for _, term := range fieldTerms(candidate, field) {
				if _, ok := probeTerms[term]; ok {
					return candidate, true
				}
			}
		}
	}
	return nil, false
}

// fieldTerms returns the match keys of a string or string-list field.
func fieldTerms(obj map[string]any, field string) []string {
	var raw []string
	switch v := obj[field].(type) {
	case string:
		raw = []string{v}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = v
	}
	terms := make([]string, 0, len(raw))
	for _, s := range raw {
		if key := textutil.MatchKey(s); key != "" {
			terms = append(terms, key)
		}
	}
	return terms
}
