package isotherm_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"isodb/internal/isotherm"
)

type fakeAdsorbates struct {
	byName map[string]string
	calls  []string
	err    error
}

func (f *fakeAdsorbates) ResolveAdsorbate(_ context.Context, partial isotherm.Adsorbate) (isotherm.Adsorbate, bool, error) {
	name, _ := partial.Name()
	f.calls = append(f.calls, name)
	if f.err != nil {
		return nil, false, f.err
	}
	key, ok := f.byName[strings.ToLower(name)]
	if !ok {
		return nil, false, nil
	}
	return isotherm.Adsorbate{"InChIKey": key, "name": name}, true, nil
}

type fakeCatalog struct {
	keys  map[string]struct{}
	calls int
	err   error
}

func (f *fakeCatalog) AdsorbateInChIKeys(context.Context) (map[string]struct{}, error) {
	f.calls++
	return f.keys, f.err
}

type fakeAdsorbents struct {
	byName map[string]isotherm.Adsorbent
	calls  int
}

func (f *fakeAdsorbents) ResolveAdsorbent(_ context.Context, partial isotherm.Adsorbent) (isotherm.Adsorbent, bool, error) {
	f.calls++
	name, _ := partial.Name()
	match, ok := f.byName[strings.ToLower(name)]
	return match, ok, nil
}

type fakeSink struct {
	written []isotherm.Adsorbate
	err     error
}

func (f *fakeSink) WriteNovelAdsorbate(_ context.Context, a isotherm.Adsorbate) error {
	f.written = append(f.written, a)
	return f.err
}

type harness struct {
	adsorbates *fakeAdsorbates
	catalog    *fakeCatalog
	adsorbents *fakeAdsorbents
	sink       *fakeSink
	normalizer *isotherm.Normalizer
}

var testCanonicalKeys = []string{
	"DOI", "adsorbates", "adsorbent", "adsorptionUnits", "filename",
	"isotherm_data", "pressureUnits", "tabular_data", "temperature",
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		adsorbates: &fakeAdsorbates{byName: map[string]string{
			"carbon dioxide": "CURLTUGMZLYLDI-UHFFFAOYSA-N",
			"methane":        "VNWKTOKETHGBQD-UHFFFAOYSA-N",
		}},
		catalog: &fakeCatalog{keys: map[string]struct{}{
			"CURLTUGMZLYLDI-UHFFFAOYSA-N": {},
			"VNWKTOKETHGBQD-UHFFFAOYSA-N": {},
			"X":                           {},
		}},
		adsorbents: &fakeAdsorbents{byName: map[string]isotherm.Adsorbent{
			"zif8": {"hashkey": "NIST-MATDB-0001", "name": "ZIF-8"},
		}},
		sink: &fakeSink{},
	}
	units := isotherm.NewAdsorptionUnits(
		[]isotherm.Unit{{ID: 1, Name: "mmol/g"}, {ID: 1, Name: "mol/kg"}, {ID: 2, Name: "cm3(STP)/g"}, {ID: 9, Name: "orphan"}},
		[]isotherm.Unit{{ID: 1, Name: "mmol/g"}, {ID: 2, Name: "cm3(STP)/g"}},
	)
	n, err := isotherm.New(isotherm.Dependencies{
		Adsorbates:      h.adsorbates,
		Catalog:         h.catalog,
		Adsorbents:      h.adsorbents,
		AdsorptionUnits: units,
		PressureUnits:   isotherm.PressureUnitTable{"bar": 1, "ATM": 1.01325, "kPa": 0.01},
		Novel:           h.sink,
	}, testCanonicalKeys, nil)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	h.normalizer = n
	return h
}

func decodeRecord(t *testing.T, doc string) isotherm.Record {
	t.Helper()
	rec, err := isotherm.Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("decode record: %v", err)
	}
	return rec
}

// plain round-trips v through encoding/json so records can be compared
// independently of json.Number versus float64 representations.
func plain(t *testing.T, v any) any {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return out
}

func pressures(t *testing.T, rec isotherm.Record) []float64 {
	t.Helper()
	points, ok := rec["isotherm_data"].([]any)
	if !ok {
		t.Fatalf("isotherm_data has type %T", rec["isotherm_data"])
	}
	out := make([]float64, 0, len(points))
	for _, p := range points {
		value, ok := p.(map[string]any)["pressure"].(float64)
		if !ok {
			t.Fatalf("pressure has type %T", p.(map[string]any)["pressure"])
		}
		out = append(out, value)
	}
	return out
}

func expectErr(t *testing.T, err, marker error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil", marker)
	}
	if !errors.Is(err, marker) {
		t.Fatalf("expected %v, got %v", marker, err)
	}
}
