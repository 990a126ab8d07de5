// Package textutil provides the name normalization shared by catalog
// matching and the filename sanitization used when mirroring the library.
//
// MatchKey folds case and drops punctuation so that "ZIF-8", "zif 8" and
// "ZIF8" compare equal. SanitizeFileName keeps catalog identifiers safe to
// use as path segments.
package textutil
