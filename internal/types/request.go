package types

import (
	"github.com/go-playground/validator/v10"
)

// SearchRequest is the query sent by the presentation layer.
type SearchRequest struct {
	Occupation string `json:"occupation" validate:"required"`
	City       string `json:"city" validate:"required,min=2"`
	Level      string `json:"level" validate:"omitempty,oneof=3 4 5 6 all"`
}

// SearchResponse is the ranked answer to a SearchRequest.
type SearchResponse struct {
	Occupation        string           `json:"occupation"`
	ReferenceLocation string           `json:"reference_location"`
	Level             LevelFilter      `json:"level"`
	Enriched          bool             `json:"enriched"`
	DatasetCount      int              `json:"dataset_count"`
	EnrichmentCount   int              `json:"enrichment_count"`
	TrainingRecords   []TrainingRecord `json:"training_records"`
}

// PlaceRequest asks for map coordinates of already-ranked records.
type PlaceRequest struct {
	TrainingRecords []TrainingRecord `json:"training_records" validate:"required"`
}

// PlaceResponse returns the records with coordinates filled where a city could be located.
type PlaceResponse struct {
	TrainingRecords []TrainingRecord `json:"training_records"`
	Located         int              `json:"located"`
}

// Validate validates the SearchRequest using the validator.
func (r *SearchRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the PlaceRequest using the validator.
func (r *PlaceRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
