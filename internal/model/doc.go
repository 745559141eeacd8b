// Package model defines the data structures shared by antennascan's
// components.
//
// This package contains the following main types:
//   - AntennaRecord: One antenna installation listed by the regulator
//   - MunicipalityEntry: A display name and the site's search code for it
//   - RawPage / PageResult: One fetched result page and what was extracted from it
//   - RunReport: The outcome of one query run, used by report writers and history
//
// The types live in their own package so the fetcher, extractor, paginator,
// exporter and report writers can share them without import cycles.
package model
