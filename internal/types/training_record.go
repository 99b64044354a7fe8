package types

// NotProvided is the sentinel for any field whose true value is unknown.
// Fields are never populated with a guessed value.
const NotProvided = "non renseigné"

// GenericCategory is the category assigned to records whose classification is unknown.
const GenericCategory = "Diplôme / Titre"

// Level is the French qualification level of a program (3 to 6) or LevelNotApplicable.
type Level string

// Level values
const (
	Level3             Level = "3"
	Level4             Level = "4"
	Level5             Level = "5"
	Level6             Level = "6"
	LevelNotApplicable Level = "non applicable"
)

// LevelFromInt converts a dataset level number. Anything outside 3..6 is not applicable.
func LevelFromInt(n int) Level {
	switch n {
	case 3:
		return Level3
	case 4:
		return Level4
	case 5:
		return Level5
	case 6:
		return Level6
	default:
		return LevelNotApplicable
	}
}

// LevelFilter restricts results to one level; LevelFilterAll disables the restriction.
type LevelFilter string

// LevelFilterAll accepts every level.
const LevelFilterAll LevelFilter = "all"

// Accepts reports whether a record of level l passes the filter.
func (f LevelFilter) Accepts(l Level) bool {
	if f == "" || f == LevelFilterAll {
		return true
	}
	return string(f) == string(l)
}

// Modality is the way a program is followed.
type Modality string

// Modality values
const (
	ModalityInitial        Modality = "initial"
	ModalityApprenticeship Modality = "apprenticeship"
	ModalityContinuing     Modality = "continuing"
	ModalityUnspecified    Modality = "unspecified"
)

// ParseModality maps a free-form dataset value onto the enumeration.
func ParseModality(s string) Modality {
	switch Modality(s) {
	case ModalityInitial, ModalityApprenticeship, ModalityContinuing:
		return Modality(s)
	default:
		return ModalityUnspecified
	}
}

// Source tags where a record came from.
type Source string

// Source values
const (
	SourceDataset    Source = "dataset"
	SourceEnrichment Source = "enrichment"
)

// Match scores. Dataset entries are authoritative and always outrank enrichment on ties.
const (
	DatasetMatchScore    = 100.0
	EnrichmentMatchScore = 60.0
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TrainingRecord is the canonical output unit returned to the presentation layer.
type TrainingRecord struct {
	Title          string       `json:"title"`
	Organization   string       `json:"organization"`
	City           string       `json:"city"`
	Region         string       `json:"region"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
	DistanceKm     float64      `json:"distance_km"`
	RNCPCode       string       `json:"rncp_code"`
	Level          Level        `json:"level"`
	Modality       Modality     `json:"modality"`
	Apprenticeship string       `json:"apprenticeship"` // alternance detail
	Category       string       `json:"category"`
	Website        string       `json:"website,omitempty"`
	References     []string     `json:"references,omitempty"`
	Source         Source       `json:"source"`
	MatchScore     float64      `json:"match_score"`
}

// ReferenceLocation is the geocoded anchor point of a query.
type ReferenceLocation struct {
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Label string  `json:"label"`
	City  string  `json:"city"`
}
