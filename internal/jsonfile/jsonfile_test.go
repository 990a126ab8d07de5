package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"isodb/internal/isotherm"
)

var _ isotherm.RecordWriter = Writer{}

func TestFormatSortsAndIndents(t *testing.T) {
	got, err := Format(map[string]any{
		"zeta":  1,
		"alpha": []any{1, 2},
		"mid":   map[string]any{"b": "x<y", "a": true},
	})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := `{
    "alpha": [
        1,
        2
    ],
    "mid": {
        "a": true,
        "b": "x<y"
    },
    "zeta": 1
}
`
	if diff := cmp.Diff(want, string(got)); diff != "" {
		t.Fatalf("unexpected layout (-want +got):\n%s", diff)
	}
}

func TestFormatKeepsNumberLiterals(t *testing.T) {
	got, err := Format(map[string]any{"pressure": json.Number("1.50"), "t": json.Number("298")})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	want := "{\n    \"pressure\": 1.50,\n    \"t\": 298\n}\n"
	if string(got) != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWriteAndReadObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lib", "iso.json")
	if err := Write(path, map[string]any{"DOI": "10.1/x", "temperature": 298.15}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	obj, err := ReadObject(path)
	if err != nil {
		t.Fatalf("ReadObject: %v", err)
	}
	if obj["DOI"] != "10.1/x" || obj["temperature"] != json.Number("298.15") {
		t.Fatalf("unexpected object: %#v", obj)
	}
}

func TestReadObjectRejectsNonObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list.json")
	if err := os.WriteFile(path, []byte(`[1,2]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadObject(path); err == nil {
		t.Fatal("expected error for non-object document")
	}
}

func TestCleanRewritesInPlace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "messy.json")
	if err := os.WriteFile(path, []byte(`{"b":1,   "a":[ "x" ]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Clean(path); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "{\n    \"a\": [\n        \"x\"\n    ],\n    \"b\": 1\n}\n"
	if string(got) != want {
		t.Fatalf("got %q want %q", got, want)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Fatalf("expected backup to be removed, stat err=%v", err)
	}
}

func TestCleanLeavesInvalidFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"a":`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Clean(path); err == nil {
		t.Fatal("expected decode error")
	}
	got, _ := os.ReadFile(path)
	if string(got) != `{"a":` {
		t.Fatalf("file was modified: %q", got)
	}
}
