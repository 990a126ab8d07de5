// Package manifest records every file the library mirror writes in a SQLite
// database, so the state of a local ISODB mirror can be summarized without
// walking the library tree.
//
// The schema is embedded and versioned. A database written by a different
// schema version is rejected with ErrSchemaMismatch; delete the manifest to
// rebuild it on the next mirror run.
package manifest
