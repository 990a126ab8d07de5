package isotherm

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mohae/deepcopy"
)

// Top-level and nested field names of an ISODB isotherm document.
const (
	KeyAdsorbates         = "adsorbates"
	KeyAdsorbent          = "adsorbent"
	KeyIsothermData       = "isotherm_data"
	KeyPressureUnits      = "pressureUnits"
	KeySaturationPressure = "saturationPressure"
	KeyAdsorptionUnits    = "adsorptionUnits"
	KeyTabularData        = "tabular_data"
	KeyLogScale           = "log_scale"
	KeyFilename           = "filename"

	KeyInChIKey    = "InChIKey"
	KeyName        = "name"
	KeyHashkey     = "hashkey"
	KeyPressure    = "pressure"
	KeySpeciesData = "species_data"
	KeyAdsorption  = "adsorption"
)

// RelativePressure marks records whose pressures are fractions of the
// saturation pressure.
const RelativePressure = "RELATIVE"

// Record is a decoded isotherm document keyed by its top-level JSON fields.
// Numbers are held as json.Number until a stage converts them.
type Record map[string]any

// Decode reads a single JSON object into a Record.
func Decode(r io.Reader) (Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var rec Record
	if err := dec.Decode(&rec); err != nil {
		return nil, fmt.Errorf("decode isotherm: %w", err)
	}
	if rec == nil {
		return nil, errors.New("decode isotherm: document is not a JSON object")
	}
	return rec, nil
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return deepcopy.Copy(r).(Record)
}

// Adsorbate is a gas species description. After normalization it always
// carries an InChIKey.
type Adsorbate map[string]any

// InChIKey returns the identifier when present and non-blank.
func (a Adsorbate) InChIKey() (string, bool) {
	return nonBlank(a, KeyInChIKey)
}

// Name returns the adsorbate name when present and non-blank.
func (a Adsorbate) Name() (string, bool) {
	return nonBlank(a, KeyName)
}

// Clone returns a deep copy of the adsorbate.
func (a Adsorbate) Clone() Adsorbate {
	if a == nil {
		return nil
	}
	return deepcopy.Copy(a).(Adsorbate)
}

// Adsorbent is a material description. After normalization it always carries
// a hashkey and the database's canonical name.
type Adsorbent map[string]any

// Hashkey returns the material identifier when present and non-blank.
func (a Adsorbent) Hashkey() (string, bool) {
	return nonBlank(a, KeyHashkey)
}

// Name returns the material name when present and non-blank.
func (a Adsorbent) Name() (string, bool) {
	return nonBlank(a, KeyName)
}

// Clone returns a deep copy of the adsorbent.
func (a Adsorbent) Clone() Adsorbent {
	if a == nil {
		return nil
	}
	return deepcopy.Copy(a).(Adsorbent)
}

func nonBlank(m map[string]any, key string) (string, bool) {
	value, ok := m[key].(string)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

// objectList returns the named field as a list of JSON objects. The returned
// maps alias the record, so stages only call it on their own copy.
func (r Record) objectList(key string) ([]map[string]any, error) {
	raw, ok := r[key]
	if !ok || raw == nil {
		return nil, fmt.Errorf("%s is missing", key)
	}
	return asObjectList(key, raw)
}

func asObjectList(key string, raw any) ([]map[string]any, error) {
	items, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%s must be a list, got %T", key, raw)
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%s[%d] must be an object, got %T", key, i, item)
		}
		out = append(out, obj)
	}
	return out, nil
}

// toFloat converts a decoded JSON number to float64. Strings, booleans and
// non-finite values are rejected.
func toFloat(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// describe renders a value compactly for error messages.
func describe(value any) string {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return string(data)
}
