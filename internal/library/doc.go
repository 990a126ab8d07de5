// Package library maintains a local mirror of the ISODB database as a tree of
// canonical JSON files.
//
// Isotherms are grouped into one folder per article, named by the DOI stub
// produced from the configured substitution rules, and a CSV file maps each
// DOI to its folder. Adsorbents, adsorbates and bibliography entries are
// mirrored one file per catalog entry. Every file written is recorded in the
// manifest when one is attached.
//
// Full isotherm regeneration holds a file lock in the library directory so
// two mirror runs cannot interleave, and pauses periodically to keep the load
// on the public API low.
package library
