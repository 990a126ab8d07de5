package isotherm

import (
	"context"
	"fmt"
	"math"

	"isodb/internal/logging"
)

func (n *Normalizer) resolveAdsorbates(ctx context.Context, r *run, rec Record) (Record, error) {
	const stageName = "adsorbates"
	adsorbates, err := rec.objectList(KeyAdsorbates)
	if err != nil {
		return nil, Wrap(ErrMalformedRecord, stageName, r.filename, err.Error(), nil)
	}

	resolved := make([]any, 0, len(adsorbates))
	for i, obj := range adsorbates {
		adsorbate := Adsorbate(obj)
		key, hasKey := adsorbate.InChIKey()
		if !hasKey {
			match, ok, err := n.deps.Adsorbates.ResolveAdsorbate(ctx, adsorbate.Clone())
			if err != nil {
				return nil, Wrap(ErrLookup, stageName, r.filename, fmt.Sprintf("resolve adsorbates[%d] %s", i, describe(obj)), err)
			}
			if _, matched := match.InChIKey(); !ok || !matched {
				return nil, Wrap(ErrUnknownAdsorbate, stageName, r.filename, describe(obj), nil)
			}
			resolved = append(resolved, map[string]any(match))
			continue
		}

		known, err := r.knownInChIKeys(ctx, n.deps.Catalog)
		if err != nil {
			return nil, Wrap(ErrLookup, stageName, r.filename, "list known InChIKeys", err)
		}
		if _, exists := known[key]; !exists {
			n.reportNovel(ctx, r, adsorbate)
		}
		resolved = append(resolved, obj)
	}

	rec[KeyAdsorbates] = resolved
	return rec, nil
}

// reportNovel hands an unrecognized adsorbate to the curation sink. The write
// is best-effort: failures are logged and normalization continues with the
// record's own InChIKey.
func (n *Normalizer) reportNovel(ctx context.Context, r *run, adsorbate Adsorbate) {
	key, _ := adsorbate.InChIKey()
	r.result.NovelAdsorbates = append(r.result.NovelAdsorbates, adsorbate.Clone())
	r.logger.Info("adsorbate not in database; flagged for curation", logging.String("inchikey", key))
	if n.deps.Novel == nil {
		return
	}
	if err := n.deps.Novel.WriteNovelAdsorbate(ctx, adsorbate.Clone()); err != nil {
		logging.WarnWithContext(r.logger, "failed to write novel adsorbate", "novel_adsorbate_write_failed",
			logging.String("inchikey", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "create the adsorbate file by hand"),
			logging.String(logging.FieldImpact, "adsorbate will be missing from the curation directory"))
	}
}

func (n *Normalizer) resolveSpecies(ctx context.Context, r *run, rec Record) (Record, error) {
	const stageName = "species"
	points, err := rec.objectList(KeyIsothermData)
	if err != nil {
		return nil, Wrap(ErrMalformedRecord, stageName, r.filename, err.Error(), nil)
	}
	for i, point := range points {
		// A point without species data is left for filterPoints to drop.
		if raw, present := point[KeySpeciesData]; !present || raw == nil {
			continue
		}
		species, err := asObjectList(fmt.Sprintf("%s[%d].%s", KeyIsothermData, i, KeySpeciesData), point[KeySpeciesData])
		if err != nil {
			return nil, Wrap(ErrMalformedRecord, stageName, r.filename, err.Error(), nil)
		}
		for j, entry := range species {
			if _, ok := Adsorbate(entry).InChIKey(); ok {
				continue
			}
			name, ok := Adsorbate(entry).Name()
			if !ok {
				return nil, Wrap(ErrUnknownAdsorbate, stageName, r.filename,
					fmt.Sprintf("%s[%d].%s[%d] has neither InChIKey nor name", KeyIsothermData, i, KeySpeciesData, j), nil)
			}
			match, found, err := n.deps.Adsorbates.ResolveAdsorbate(ctx, Adsorbate{KeyName: name})
			if err != nil {
				return nil, Wrap(ErrLookup, stageName, r.filename, fmt.Sprintf("resolve species %q", name), err)
			}
			key, matched := match.InChIKey()
			if !found || !matched {
				return nil, Wrap(ErrUnknownAdsorbate, stageName, r.filename, fmt.Sprintf("species %q", name), nil)
			}
			entry[KeyInChIKey] = key
			delete(entry, KeyName)
		}
	}
	return rec, nil
}

func (n *Normalizer) resolveAdsorbent(ctx context.Context, r *run, rec Record) (Record, error) {
	const stageName = "adsorbent"
	obj, ok := rec[KeyAdsorbent].(map[string]any)
	if !ok {
		return nil, Wrap(ErrMalformedRecord, stageName, r.filename, fmt.Sprintf("%s must be an object, got %T", KeyAdsorbent, rec[KeyAdsorbent]), nil)
	}
	adsorbent := Adsorbent(obj)
	if _, ok := adsorbent.Hashkey(); ok {
		return rec, nil
	}

	match, found, err := n.deps.Adsorbents.ResolveAdsorbent(ctx, adsorbent.Clone())
	if err != nil {
		return nil, Wrap(ErrLookup, stageName, r.filename, fmt.Sprintf("resolve adsorbent %s", describe(obj)), err)
	}
	hashkey, matched := match.Hashkey()
	if !found || !matched {
		return nil, Wrap(ErrUnknownAdsorbent, stageName, r.filename, describe(obj), nil)
	}
	obj[KeyHashkey] = hashkey
	if name, ok := match.Name(); ok {
		obj[KeyName] = name
	}
	return rec, nil
}

func (n *Normalizer) convertPressure(_ context.Context, r *run, rec Record) (Record, error) {
	const stageName = "pressure"
	units, _ := rec[KeyPressureUnits].(string)

	var factor float64
	if units == RelativePressure {
		raw, present := rec[KeySaturationPressure]
		value, ok := toFloat(raw)
		if !present || !ok || value <= 0 {
			return nil, Wrap(ErrMissingSaturationPressure, stageName, r.filename,
				fmt.Sprintf("%s declared; %s must be a positive number in bar, got %s", RelativePressure, KeySaturationPressure, describe(raw)), nil)
		}
		factor = value
	} else {
		value, ok := n.deps.PressureUnits.Factor(units)
		if !ok {
			return nil, Wrap(ErrUnknownPressureUnit, stageName, r.filename, describe(rec[KeyPressureUnits]), nil)
		}
		factor = value
	}

	logScale, err := readLogScale(rec)
	if err != nil {
		return nil, Wrap(ErrMalformedRecord, stageName, r.filename, err.Error(), nil)
	}

	points, err := rec.objectList(KeyIsothermData)
	if err != nil {
		return nil, Wrap(ErrMalformedRecord, stageName, r.filename, err.Error(), nil)
	}
	for i, point := range points {
		raw := point[KeyPressure]
		value, ok := toFloat(raw)
		if !ok {
			return nil, Wrap(ErrInvalidPressureValue, stageName, r.filename,
				fmt.Sprintf("%s[%d].%s = %s", KeyIsothermData, i, KeyPressure, describe(raw)), nil)
		}
		if logScale {
			value = math.Pow(10, value)
		}
		value *= factor
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, Wrap(ErrInvalidPressureValue, stageName, r.filename,
				fmt.Sprintf("%s[%d].%s = %s does not convert to a finite pressure", KeyIsothermData, i, KeyPressure, describe(raw)), nil)
		}
		point[KeyPressure] = value
	}

	rec[KeyPressureUnits] = "bar"
	return rec, nil
}

// readLogScale treats an absent or null flag as false. Booleans and the
// integers 0/1 are accepted.
func readLogScale(rec Record) (bool, error) {
	raw, present := rec[KeyLogScale]
	if !present || raw == nil {
		return false, nil
	}
	if flag, ok := raw.(bool); ok {
		return flag, nil
	}
	if value, ok := toFloat(raw); ok && (value == 0 || value == 1) {
		return value == 1, nil
	}
	return false, fmt.Errorf("%s must be a boolean, got %s", KeyLogScale, describe(raw))
}

func (n *Normalizer) canonicalizeAdsorptionUnits(ctx context.Context, r *run, rec Record) (Record, error) {
	const stageName = "adsorption_units"
	name, ok := rec[KeyAdsorptionUnits].(string)
	if !ok {
		return nil, Wrap(ErrUnknownAdsorptionUnit, stageName, r.filename, describe(rec[KeyAdsorptionUnits]), nil)
	}
	id, found, err := n.deps.AdsorptionUnits.AdsorptionUnitID(ctx, name)
	if err != nil {
		return nil, Wrap(ErrLookup, stageName, r.filename, fmt.Sprintf("look up unit %q", name), err)
	}
	if !found {
		return nil, Wrap(ErrUnknownAdsorptionUnit, stageName, r.filename, fmt.Sprintf("%q is not a known unit name", name), nil)
	}
	canonical, found, err := n.deps.AdsorptionUnits.DefaultAdsorptionUnit(ctx, id)
	if err != nil {
		return nil, Wrap(ErrLookup, stageName, r.filename, fmt.Sprintf("look up default for unit id %d", id), err)
	}
	if !found {
		return nil, Wrap(ErrUnknownAdsorptionUnit, stageName, r.filename, fmt.Sprintf("%q (id %d) has no default unit", name, id), nil)
	}
	rec[KeyAdsorptionUnits] = canonical
	return rec, nil
}

func coerceTabularFlag(_ context.Context, r *run, rec Record) (Record, error) {
	raw, present := rec[KeyTabularData]
	switch v := raw.(type) {
	case bool:
		if v {
			rec[KeyTabularData] = 1
		} else {
			rec[KeyTabularData] = 0
		}
		return rec, nil
	default:
		if value, ok := toFloat(raw); present && ok && (value == 0 || value == 1) {
			rec[KeyTabularData] = int(value)
			return rec, nil
		}
	}
	return nil, Wrap(ErrInvalidTabularDataFlag, "tabular_data", r.filename,
		fmt.Sprintf("expected true, false, 0 or 1, got %s", describe(raw)), nil)
}

// filterPoints keeps points with a positive pressure whose smallest species
// adsorption is also positive. Points without species data or with a
// non-numeric adsorption cannot satisfy that and are dropped too.
func filterPoints(_ context.Context, r *run, rec Record) (Record, error) {
	points, err := rec.objectList(KeyIsothermData)
	if err != nil {
		return nil, Wrap(ErrMalformedRecord, "filter_points", r.filename, err.Error(), nil)
	}
	kept := make([]any, 0, len(points))
	for _, point := range points {
		if keepPoint(point) {
			kept = append(kept, point)
		}
	}
	r.result.DroppedPoints += len(points) - len(kept)
	rec[KeyIsothermData] = kept
	return rec, nil
}

func keepPoint(point map[string]any) bool {
	pressure, ok := toFloat(point[KeyPressure])
	if !ok || pressure <= 0 {
		return false
	}
	species, ok := point[KeySpeciesData].([]any)
	if !ok || len(species) == 0 {
		return false
	}
	lowest := math.Inf(1)
	for _, item := range species {
		entry, ok := item.(map[string]any)
		if !ok {
			return false
		}
		adsorption, ok := toFloat(entry[KeyAdsorption])
		if !ok {
			return false
		}
		lowest = math.Min(lowest, adsorption)
	}
	return lowest > 0
}

func (n *Normalizer) pruneKeys(_ context.Context, _ *run, rec Record) (Record, error) {
	for key := range rec {
		if _, ok := n.canonical[key]; !ok {
			delete(rec, key)
		}
	}
	return rec, nil
}
