package isodb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"isodb/internal/isodb"
	"isodb/internal/isotherm"
)

const (
	gasesJSON = `[
		{"InChIKey": "CURLTUGMZLYLDI-UHFFFAOYSA-N", "name": "Carbon Dioxide", "formula": "CO2", "synonyms": ["carbonic anhydride"]},
		{"InChIKey": "VNWKTOKETHGBQD-UHFFFAOYSA-N", "name": "Methane", "formula": "CH4", "synonyms": []},
		{"name": "Broken entry without key"}
	]`
	materialsJSON = `[
		{"hashkey": "NIST-MATDB-0001", "name": "ZIF-8", "synonyms": ["Basolite Z1200"]},
		{"hashkey": "NIST-MATDB-0002", "name": "Activated Carbon", "formula": "C"}
	]`
	unitsJSON        = `[{"id": 1, "name": "mmol/g"}, {"id": 1, "name": "mol/kg"}, {"id": 2, "name": "cm3(STP)/g"}]`
	defaultUnitsJSON = `[{"id": 1, "name": "mmol/g"}, {"id": 2, "name": "cm3(STP)/g"}]`
	biblioJSON       = `[
		{"DOI": "10.1021/la00001a001", "title": "First", "isotherms": [{"filename": "10.1021la00001a001.Isotherm1"}, {"filename": "10.1021la00001a001.Isotherm2"}]},
		{"DOI": "10.1016/j.empty", "title": "Empty", "isotherms": []}
	]`
	isothermsJSON = `[{"filename": "a.Isotherm1", "DOI": "10.1021/LA00001A001"}, {"filename": "a.Isotherm2", "DOI": "10.1021/la00001a001"}]`
)

type apiServer struct {
	*httptest.Server
	mu   sync.Mutex
	hits map[string]int
}

func newAPIServer(t *testing.T) *apiServer {
	t.Helper()
	routes := map[string]string{
		"/isodb/api/gases.json":                          gasesJSON,
		"/isodb/api/materials.json":                      materialsJSON,
		"/isodb/api/adsorption-unit-lookup.json":         unitsJSON,
		"/isodb/api/default-adsorption-unit-lookup.json": defaultUnitsJSON,
		"/isodb/api/biblio.json":                         biblioJSON,
		"/isodb/api/isotherms.json":                      isothermsJSON,
		"/isodb/api/isotherm/sample.Isotherm1.json":      `{"filename": "sample.Isotherm1", "temperature": 298.15, "isotherm_data": []}`,
	}
	s := &apiServer{hits: map[string]int{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.hits[r.URL.Path]++
		s.mu.Unlock()
		if r.Header.Get("User-Agent") != "isodb-test" {
			t.Errorf("unexpected user agent %q", r.Header.Get("User-Agent"))
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *apiServer) count(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func newClient(t *testing.T, s *apiServer) *isodb.Client {
	t.Helper()
	client, err := isodb.New(s.URL+"/", "isodb-test", 5*time.Second, isodb.WithHTTPClient(s.Client()))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return client
}

func TestNewRequiresHost(t *testing.T) {
	if _, err := isodb.New("  ", "ua", time.Second); err == nil {
		t.Fatal("expected error when host missing")
	}
}

func TestIsothermFileName(t *testing.T) {
	if got := isodb.IsothermFileName("abc"); got != "abc.json" {
		t.Fatalf("got %q", got)
	}
	if got := isodb.IsothermFileName("abc.json"); got != "abc.json" {
		t.Fatalf("got %q", got)
	}
}

func TestIsothermDownload(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)

	rec, err := client.Isotherm(context.Background(), "sample.Isotherm1")
	if err != nil {
		t.Fatalf("Isotherm returned error: %v", err)
	}
	if rec["filename"] != "sample.Isotherm1" {
		t.Fatalf("unexpected record: %v", rec)
	}
	if rec["temperature"].(interface{ String() string }).String() != "298.15" {
		t.Fatalf("expected number to keep its literal form, got %v", rec["temperature"])
	}
}

func TestIsothermHTTPError(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)

	_, err := client.Isotherm(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestBibliographyParsesArticles(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)

	articles, err := client.Bibliography(context.Background())
	if err != nil {
		t.Fatalf("Bibliography returned error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	want := []string{"10.1021la00001a001.Isotherm1", "10.1021la00001a001.Isotherm2"}
	if diff := cmp.Diff(want, articles[0].Isotherms); diff != "" {
		t.Fatalf("unexpected isotherms (-want +got):\n%s", diff)
	}
	if articles[0].Entry["title"] != "First" || len(articles[1].Isotherms) != 0 {
		t.Fatalf("unexpected articles: %+v", articles)
	}
}

func TestIsothermsListing(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)

	list, err := client.Isotherms(context.Background())
	if err != nil {
		t.Fatalf("Isotherms returned error: %v", err)
	}
	want := []isodb.IsothermSummary{
		{Filename: "a.Isotherm1", DOI: "10.1021/LA00001A001"},
		{Filename: "a.Isotherm2", DOI: "10.1021/la00001a001"},
	}
	if diff := cmp.Diff(want, list); diff != "" {
		t.Fatalf("unexpected listing (-want +got):\n%s", diff)
	}
}

func TestResolveAdsorbate(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)
	ctx := context.Background()

	cases := []struct {
		probe isotherm.Adsorbate
		want  string
	}{
		{isotherm.Adsorbate{"name": "carbon dioxide"}, "CURLTUGMZLYLDI-UHFFFAOYSA-N"},
		{isotherm.Adsorbate{"name": "CO2"}, "CURLTUGMZLYLDI-UHFFFAOYSA-N"},
		{isotherm.Adsorbate{"name": "Carbonic-Anhydride"}, "CURLTUGMZLYLDI-UHFFFAOYSA-N"},
		{isotherm.Adsorbate{"name": "METHANE"}, "VNWKTOKETHGBQD-UHFFFAOYSA-N"},
	}
	for _, tc := range cases {
		got, ok, err := client.ResolveAdsorbate(ctx, tc.probe)
		if err != nil || !ok {
			t.Fatalf("ResolveAdsorbate(%v) = %v, %v, %v", tc.probe, got, ok, err)
		}
		if key, _ := got.InChIKey(); key != tc.want {
			t.Fatalf("ResolveAdsorbate(%v) resolved to %v", tc.probe, got)
		}
	}

	for _, probe := range []isotherm.Adsorbate{{"name": "unobtainium"}, {"name": "Broken entry without key"}, {}} {
		if got, ok, err := client.ResolveAdsorbate(ctx, probe); err != nil || ok {
			t.Fatalf("expected no match for %v, got %v %v %v", probe, got, ok, err)
		}
	}
	if hits := s.count("/isodb/api/gases.json"); hits != 1 {
		t.Fatalf("expected gases catalog to be fetched once, got %d", hits)
	}
}

func TestResolveAdsorbent(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)

	got, ok, err := client.ResolveAdsorbent(context.Background(), isotherm.Adsorbent{"name": "zif 8"})
	if err != nil || !ok {
		t.Fatalf("ResolveAdsorbent returned %v %v %v", got, ok, err)
	}
	want := isotherm.Adsorbent{"hashkey": "NIST-MATDB-0001", "name": "ZIF-8"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected adsorbent (-want +got):\n%s", diff)
	}

	got, ok, err = client.ResolveAdsorbent(context.Background(), isotherm.Adsorbent{"name": "basolite z1200"})
	if err != nil || !ok || got["hashkey"] != "NIST-MATDB-0001" {
		t.Fatalf("expected synonym match, got %v %v %v", got, ok, err)
	}
}

func TestAdsorbateInChIKeys(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)

	keys, err := client.AdsorbateInChIKeys(context.Background())
	if err != nil {
		t.Fatalf("AdsorbateInChIKeys returned error: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
	if _, ok := keys["VNWKTOKETHGBQD-UHFFFAOYSA-N"]; !ok {
		t.Fatalf("missing methane key in %v", keys)
	}
}

func TestAdsorptionUnitLookup(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)
	ctx := context.Background()

	id, ok, err := client.AdsorptionUnitID(ctx, "MOL/KG")
	if err != nil || !ok || id != 1 {
		t.Fatalf("AdsorptionUnitID returned %d %v %v", id, ok, err)
	}
	name, ok, err := client.DefaultAdsorptionUnit(ctx, id)
	if err != nil || !ok || name != "mmol/g" {
		t.Fatalf("DefaultAdsorptionUnit returned %q %v %v", name, ok, err)
	}
	if _, ok, _ := client.AdsorptionUnitID(ctx, "furlongs"); ok {
		t.Fatal("expected unknown unit to miss")
	}
	if hits := s.count("/isodb/api/adsorption-unit-lookup.json"); hits != 1 {
		t.Fatalf("expected unit table to be fetched once, got %d", hits)
	}
}

func TestNormalizerWithClient(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)

	normalizer, err := isotherm.New(isotherm.Dependencies{
		Adsorbates:      client,
		Catalog:         client,
		Adsorbents:      client,
		AdsorptionUnits: client,
		PressureUnits:   isotherm.PressureUnitTable{"bar": 1},
	}, []string{"adsorbates", "adsorbent", "adsorptionUnits", "isotherm_data", "pressureUnits", "tabular_data"}, nil)
	if err != nil {
		t.Fatalf("isotherm.New returned error: %v", err)
	}
	rec, err := isotherm.Decode(strings.NewReader(`{
		"adsorbates": [{"name": "methane"}],
		"adsorbent": {"name": "Activated Carbon"},
		"pressureUnits": "bar",
		"adsorptionUnits": "mol/kg",
		"isotherm_data": [{"pressure": 1, "species_data": [{"name": "CH4", "adsorption": 0.5}]}],
		"tabular_data": false
	}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	result, err := normalizer.Normalize(context.Background(), "live.json", rec)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if result.Record["adsorbent"].(map[string]any)["hashkey"] != "NIST-MATDB-0002" {
		t.Fatalf("unexpected adsorbent: %v", result.Record["adsorbent"])
	}
	if result.Record["adsorptionUnits"] != "mmol/g" {
		t.Fatalf("unexpected adsorption units: %v", result.Record["adsorptionUnits"])
	}
}

func TestRequestHonoursCancellation(t *testing.T) {
	s := newAPIServer(t)
	client := newClient(t, s)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Gases(ctx)
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
