package isotherm

import (
	"context"
	"strings"

	"isodb/internal/textutil"
)

// AdsorbateResolver finds the best-matching known adsorbate for a partial
// description. ok is false when nothing matches.
type AdsorbateResolver interface {
	ResolveAdsorbate(ctx context.Context, partial Adsorbate) (resolved Adsorbate, ok bool, err error)
}

// AdsorbateCatalog lists every InChIKey the database knows about.
type AdsorbateCatalog interface {
	AdsorbateInChIKeys(ctx context.Context) (map[string]struct{}, error)
}

// AdsorbentResolver finds the best-matching known material for a partial
// description. ok is false when nothing matches.
type AdsorbentResolver interface {
	ResolveAdsorbent(ctx context.Context, partial Adsorbent) (resolved Adsorbent, ok bool, err error)
}

// AdsorptionUnitLookup maps adsorption unit names to unit IDs and unit IDs to
// the database's default unit name. Name matching is case-insensitive.
type AdsorptionUnitLookup interface {
	AdsorptionUnitID(ctx context.Context, name string) (id int, ok bool, err error)
	DefaultAdsorptionUnit(ctx context.Context, id int) (name string, ok bool, err error)
}

// NovelSink receives adsorbates whose InChIKey is not yet in the database so
// they can be curated by hand.
type NovelSink interface {
	WriteNovelAdsorbate(ctx context.Context, adsorbate Adsorbate) error
}

// RecordWriter persists a canonical record.
type RecordWriter interface {
	WriteRecord(path string, value any) error
}

// PressureUnitTable maps raw pressure unit names to their factor in bar.
type PressureUnitTable map[string]float64

// Factor returns the conversion factor for unit. An exact match wins; a
// case-folded match is accepted when it is unambiguous.
func (t PressureUnitTable) Factor(unit string) (float64, bool) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return 0, false
	}
	if factor, ok := t[unit]; ok {
		return factor, true
	}
	want := textutil.Fold(unit)
	var factor float64
	hits := 0
	for name, value := range t {
		if textutil.Fold(name) != want {
			continue
		}
		if hits > 0 && value != factor {
			return 0, false
		}
		factor = value
		hits++
	}
	return factor, hits > 0
}

// Unit is one row of the ISODB adsorption unit tables.
type Unit struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AdsorptionUnits is an in-memory AdsorptionUnitLookup built from the unit
// name table and the default unit table.
type AdsorptionUnits struct {
	ids      map[string]int
	defaults map[int]string
}

var _ AdsorptionUnitLookup = (*AdsorptionUnits)(nil)

// NewAdsorptionUnits indexes the two unit tables. When several names fold to
// the same key the first one listed wins.
func NewAdsorptionUnits(all, defaults []Unit) *AdsorptionUnits {
	units := &AdsorptionUnits{
		ids:      make(map[string]int, len(all)),
		defaults: make(map[int]string, len(defaults)),
	}
	for _, unit := range all {
		key := textutil.Fold(unit.Name)
		if key == "" {
			continue
		}
		if _, exists := units.ids[key]; !exists {
			units.ids[key] = unit.ID
		}
	}
	for _, unit := range defaults {
		if _, exists := units.defaults[unit.ID]; !exists && strings.TrimSpace(unit.Name) != "" {
			units.defaults[unit.ID] = unit.Name
		}
	}
	return units
}

// AdsorptionUnitID implements AdsorptionUnitLookup.
func (u *AdsorptionUnits) AdsorptionUnitID(_ context.Context, name string) (int, bool, error) {
	id, ok := u.ids[textutil.Fold(name)]
	return id, ok, nil
}

// DefaultAdsorptionUnit implements AdsorptionUnitLookup.
func (u *AdsorptionUnits) DefaultAdsorptionUnit(_ context.Context, id int) (string, bool, error) {
	name, ok := u.defaults[id]
	return name, ok, nil
}
