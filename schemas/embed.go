// Package schemas ships the JSON Schema documents that describe the repository's data contracts.
package schemas

import "embed"

// FS holds every *.schema.json file of this directory.
//
//go:embed *.schema.json
var FS embed.FS

// Schema file names
const (
	Catalog    = "catalog.schema.json"
	Candidates = "candidates.schema.json"
)
