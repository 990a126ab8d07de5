// Package jsonfile reads and writes ISODB JSON documents in the library's
// canonical layout: keys sorted, four-space indent, trailing newline.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/pretty"

	"isodb/internal/fileutil"
)

var layout = &pretty.Options{
	Width:    0, // never collapse arrays onto one line
	Prefix:   "",
	Indent:   "    ",
	SortKeys: true,
}

// Format renders value in canonical form.
func Format(value any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	out := pretty.PrettyOptions(buf.Bytes(), layout)
	if len(out) == 0 || out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}

// Write stores value at path in canonical form, replacing any existing file
// atomically.
func Write(path string, value any) error {
	data, err := Format(value)
	if err != nil {
		return fmt.Errorf("format %s: %w", path, err)
	}
	if err := fileutil.WriteAtomic(path, data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadObject decodes the JSON object stored at path. Numbers are returned as
// json.Number so they round-trip without loss.
func ReadObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if obj == nil {
		return nil, fmt.Errorf("decode %s: not a JSON object", path)
	}
	return obj, nil
}

// Clean rewrites the JSON document at path in canonical form. A ".bak" copy
// of the original is kept until the rewrite succeeds.
func Clean(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	backup := path + ".bak"
	if err := fileutil.CopyFile(path, backup); err != nil {
		return fmt.Errorf("back up %s: %w", path, err)
	}
	if err := Write(path, value); err != nil {
		return err
	}
	return os.Remove(backup)
}

// Writer adapts Write to isotherm.RecordWriter.
type Writer struct{}

// WriteRecord implements isotherm.RecordWriter.
func (Writer) WriteRecord(path string, value any) error {
	return Write(path, value)
}
