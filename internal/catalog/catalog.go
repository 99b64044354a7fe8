// Package catalog loads the static reference dataset of training programs and matches it
// against a query.
//
// The dataset is parsed and schema-checked once, then never mutated: a *Catalog is safe
// for concurrent readers without locking.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/jonathan/formation-finder/internal/schemas"
	"github.com/jonathan/formation-finder/internal/types"
	shipped "github.com/jonathan/formation-finder/schemas"
)

//go:embed data/formations.json
var embeddedDataset []byte

// LoadError reports a dataset that does not honor the catalog contract.
type LoadError struct {
	Source  string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("catalog load error (%s): %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("catalog load error (%s): %s", e.Source, e.Message)
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Entry is one eligible dataset row. Rows without usable coordinates never become entries.
type Entry struct {
	Title          string
	Organization   string
	City           string
	Region         string
	Coordinates    types.Coordinates
	Level          types.Level
	RNCPCode       string
	Modality       types.Modality
	Apprenticeship string
	Category       string
	Website        string
}

// Catalog is the immutable, loaded dataset.
type Catalog struct {
	Version  string
	entries  []Entry
	excluded int
}

// Entries returns the eligible rows. Callers must not modify the returned slice.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Len returns the number of eligible rows.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Excluded returns how many rows were dropped for lack of valid coordinates.
func (c *Catalog) Excluded() int {
	return c.excluded
}

// rawDocument mirrors catalog.schema.json.
type rawDocument struct {
	Version    string   `json:"version"`
	Formations []rawRow `json:"formations"`
}

type rawRow struct {
	Title          string   `json:"title"`
	Organization   string   `json:"organization"`
	City           string   `json:"city"`
	Region         *string  `json:"region"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	Level          *int     `json:"level"`
	RNCP           *string  `json:"rncp"`
	Modality       *string  `json:"modality"`
	Apprenticeship *string  `json:"apprenticeship"`
	Category       *string  `json:"category"`
	Website        *string  `json:"website"`
}

// Parse validates data against the catalog schema and builds a Catalog. A document that
// does not have the expected shape is rejected rather than probed for another array.
func Parse(source string, data []byte) (*Catalog, error) {
	if err := schemas.ValidateDocument(shipped.Catalog, data); err != nil {
		return nil, &LoadError{Source: source, Message: "dataset does not match catalog schema", Cause: err}
	}

	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Source: source, Message: "failed to decode dataset", Cause: err}
	}

	c := &Catalog{
		Version: doc.Version,
		entries: make([]Entry, 0, len(doc.Formations)),
	}
	for _, row := range doc.Formations {
		coords, ok := validCoordinates(row.Latitude, row.Longitude)
		if !ok {
			c.excluded++
			continue
		}
		c.entries = append(c.entries, row.toEntry(coords))
	}

	return c, nil
}

// LoadFile reads and parses a dataset file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Message: "failed to read dataset file", Cause: err}
	}
	return Parse(path, data)
}

var loadEmbedded = sync.OnceValues(func() (*Catalog, error) {
	return Parse("embedded", embeddedDataset)
})

// Default returns the dataset shipped with the binary. It is parsed on first use and
// shared for the lifetime of the process.
func Default() (*Catalog, error) {
	return loadEmbedded()
}

// Load returns the catalog at path, or the shipped one when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return LoadFile(path)
}

func validCoordinates(lat, lon *float64) (types.Coordinates, bool) {
	if lat == nil || lon == nil {
		return types.Coordinates{}, false
	}
	if *lat < -90 || *lat > 90 || *lon < -180 || *lon > 180 {
		return types.Coordinates{}, false
	}
	// (0,0) is the classic placeholder for a missing position.
	if *lat == 0 && *lon == 0 {
		return types.Coordinates{}, false
	}
	return types.Coordinates{Lat: *lat, Lon: *lon}, true
}

func (r rawRow) toEntry(coords types.Coordinates) Entry {
	level := types.LevelNotApplicable
	if r.Level != nil {
		level = types.LevelFromInt(*r.Level)
	}

	modality := types.ModalityUnspecified
	if r.Modality != nil {
		modality = types.ParseModality(strings.TrimSpace(*r.Modality))
	}

	return Entry{
		Title:          strings.TrimSpace(r.Title),
		Organization:   strings.TrimSpace(r.Organization),
		City:           strings.TrimSpace(r.City),
		Region:         orDefault(r.Region, types.NotProvided),
		Coordinates:    coords,
		Level:          level,
		RNCPCode:       orDefault(r.RNCP, types.NotProvided),
		Modality:       modality,
		Apprenticeship: orDefault(r.Apprenticeship, types.NotProvided),
		Category:       orDefault(r.Category, types.NotProvided),
		Website:        orDefault(r.Website, ""),
	}
}

func orDefault(s *string, def string) string {
	if s == nil {
		return def
	}
	if v := strings.TrimSpace(*s); v != "" {
		return v
	}
	return def
}
