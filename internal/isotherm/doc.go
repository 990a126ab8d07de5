// Package isotherm normalizes raw ISODB isotherm records into canonical form.
//
// A Normalizer runs a fixed sequence of stages over one decoded record:
// adsorbate and species resolution, adsorbent resolution, pressure conversion
// to bar, adsorption unit canonicalization, tabular flag coercion, data point
// filtering and canonical key pruning. Each stage receives its own deep copy of
// the previous stage's output, so the caller's record is never modified and a
// failed run leaves nothing half-normalized behind.
//
// Lookups against the remote database are expressed as small capability
// interfaces (AdsorbateResolver, AdsorbentResolver, AdsorptionUnitLookup, ...)
// so the pipeline can be exercised with in-memory fakes. Every terminal
// failure carries one of the sentinel errors in errors.go together with the
// stage, file name and offending value.
package isotherm
