package isotherm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"isodb/internal/logging"
)

// Dependencies bundles the lookup capabilities the pipeline needs. Novel is
// optional; every other field is required.
type Dependencies struct {
	Adsorbates      AdsorbateResolver
	Catalog         AdsorbateCatalog
	Adsorbents      AdsorbentResolver
	AdsorptionUnits AdsorptionUnitLookup
	PressureUnits   PressureUnitTable
	Novel           NovelSink
}

// Result is the outcome of a successful normalization run.
type Result struct {
	Record          Record
	NovelAdsorbates []Adsorbate
	DroppedPoints   int
}

// Normalizer converts raw isotherm records into canonical form.
type Normalizer struct {
	deps      Dependencies
	canonical map[string]struct{}
	logger    *slog.Logger
}

type stage struct {
	name  string
	apply func(ctx context.Context, r *run, rec Record) (Record, error)
}

// run carries per-record state: the file name for error context, side
// outputs, and the InChIKey catalog fetched at most once per record.
type run struct {
	filename  string
	inchikeys map[string]struct{}
	result    *Result
	logger    *slog.Logger
}

// New validates the dependencies and builds a Normalizer that keeps only
// canonicalKeys at the top level of its output.
func New(deps Dependencies, canonicalKeys []string, logger *slog.Logger) (*Normalizer, error) {
	switch {
	case deps.Adsorbates == nil:
		return nil, errors.New("adsorbate resolver required")
	case deps.Catalog == nil:
		return nil, errors.New("adsorbate catalog required")
	case deps.Adsorbents == nil:
		return nil, errors.New("adsorbent resolver required")
	case deps.AdsorptionUnits == nil:
		return nil, errors.New("adsorption unit lookup required")
	case len(deps.PressureUnits) == 0:
		return nil, errors.New("pressure unit table required")
	case len(canonicalKeys) == 0:
		return nil, errors.New("canonical key allow-list required")
	}
	canonical := make(map[string]struct{}, len(canonicalKeys))
	for _, key := range canonicalKeys {
		canonical[key] = struct{}{}
	}
	return &Normalizer{
		deps:      deps,
		canonical: canonical,
		logger:    logging.NewComponentLogger(logger, "normalizer"),
	}, nil
}

func (n *Normalizer) stages() []stage {
	return []stage{
		{name: "adsorbates", apply: n.resolveAdsorbates},
		{name: "species", apply: n.resolveSpecies},
		{name: "adsorbent", apply: n.resolveAdsorbent},
		{name: "pressure", apply: n.convertPressure},
		{name: "adsorption_units", apply: n.canonicalizeAdsorptionUnits},
		{name: "tabular_data", apply: coerceTabularFlag},
		{name: "filter_points", apply: filterPoints},
		{name: "prune", apply: n.pruneKeys},
	}
}

// Normalize runs every stage in order over a copy of rec. The first failing
// stage aborts the run; rec itself is never modified.
func (n *Normalizer) Normalize(ctx context.Context, filename string, rec Record) (*Result, error) {
	if rec == nil {
		return nil, Wrap(ErrMalformedRecord, "", filename, "record is empty", nil)
	}
	ctx = logging.WithFilename(ctx, filename)
	r := &run{
		filename: filename,
		result:   &Result{},
		logger:   logging.WithContext(ctx, n.logger),
	}

	current := rec
	for _, st := range n.stages() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("normalize %s: %w", filename, err)
		}
		next, err := st.apply(ctx, r, current.Clone())
		if err != nil {
			r.logger.Debug("normalization stage failed",
				logging.String(logging.FieldStage, st.name),
				logging.Error(err))
			return nil, err
		}
		r.logger.Debug("normalization stage complete", logging.String(logging.FieldStage, st.name))
		current = next
	}

	r.result.Record = current
	r.logger.Info("isotherm normalized",
		logging.Int("novel_adsorbates", len(r.result.NovelAdsorbates)),
		logging.Int("dropped_points", r.result.DroppedPoints))
	return r.result, nil
}

func (r *run) knownInChIKeys(ctx context.Context, catalog AdsorbateCatalog) (map[string]struct{}, error) {
	if r.inchikeys != nil {
		return r.inchikeys, nil
	}
	keys, err := catalog.AdsorbateInChIKeys(ctx)
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = map[string]struct{}{}
	}
	r.inchikeys = keys
	return keys, nil
}
