// Package main hosts the isodb CLI entrypoint and command graph.
//
// The Cobra command tree covers the isotherm curation workflow: normalizing
// raw digitized isotherms for upload, rewriting JSON files in canonical form,
// mirroring the ISODB database into a local library, and inspecting the
// mirror's manifest and git history. Configuration, logging and the API
// client are resolved once per invocation in commandContext.
//
// Add functionality to the internal packages first and surface it here
// through dedicated commands or flags.
package main
