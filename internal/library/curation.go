package library

import (
	"context"
	"errors"
	"path/filepath"

	"isodb/internal/isotherm"
	"isodb/internal/jsonfile"
	"isodb/internal/manifest"
	"isodb/internal/textutil"
)

// CurationSink writes adsorbates missing from the database to
// <dir>/<InChIKey>.json so they can be uploaded by hand.
type CurationSink struct {
	dir      string
	recorder Recorder
}

var _ isotherm.NovelSink = (*CurationSink)(nil)

// NewCurationSink creates a sink writing into dir. recorder may be nil.
func NewCurationSink(dir string, recorder Recorder) *CurationSink {
	return &CurationSink{dir: dir, recorder: recorder}
}

// WriteNovelAdsorbate implements isotherm.NovelSink.
func (s *CurationSink) WriteNovelAdsorbate(ctx context.Context, adsorbate isotherm.Adsorbate) error {
	key, ok := adsorbate.InChIKey()
	if !ok {
		return errors.New("novel adsorbate has no InChIKey")
	}
	name := textutil.SanitizeFileName(key)
	path := filepath.Join(s.dir, name+".json")
	if err := jsonfile.Write(path, adsorbate); err != nil {
		return err
	}
	return recordFile(ctx, s.recorder, manifest.Entry{Kind: manifest.KindNovelAdsorbate, Key: key, Path: path})
}
