package isotherm

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownAdsorbate          = errors.New("unknown adsorbate")
	ErrUnknownAdsorbent          = errors.New("unknown adsorbent")
	ErrMissingSaturationPressure = errors.New("missing saturation pressure")
	ErrUnknownPressureUnit       = errors.New("unknown pressure unit")
	ErrUnknownAdsorptionUnit     = errors.New("unknown adsorption unit")
	ErrInvalidPressureValue      = errors.New("invalid pressure value")
	ErrInvalidTabularDataFlag    = errors.New("invalid tabular_data flag")
	ErrMalformedRecord           = errors.New("malformed record")
	ErrLookup                    = errors.New("lookup failed")
)

// Wrap builds an error message that includes stage and file context while
// tagging it with the provided marker so callers can classify it with
// errors.Is. The marker should be one of the exported sentinel errors above.
func Wrap(marker error, stage, filename, message string, err error) error {
	detail := buildDetail(stage, filename, message)
	if marker == nil {
		marker = ErrMalformedRecord
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, filename, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if filename = strings.TrimSpace(filename); filename != "" {
		parts = append(parts, filename)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "normalization failure"
	}
	return strings.Join(parts, ": ")
}
