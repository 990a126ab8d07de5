// Package isodb is a client for the NIST ISODB REST API.
//
// The client fetches single isotherms, the isotherm and bibliography
// listings, and the gas, material and adsorption unit catalogs. Catalogs are
// fetched once per Client and then served from memory, so one Client should
// back one command invocation.
//
// Client satisfies every lookup interface the isotherm normalizer depends on:
// adsorbates and adsorbents are resolved against the catalogs by identifier,
// name, synonym or formula, compared case-insensitively and ignoring
// punctuation.
package isodb
