// Package types provides type definitions for structured data used throughout the formation finder.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/jonathan/formation-finder/internal/parsing"
)

// Occupation is one of the fixed trade roles of the agricultural-trade sector.
type Occupation string

// Occupation slugs. The set is closed: rule tables and the front-end form key on these values.
const (
	OccupationAgentSilo             Occupation = "agent-silo"
	OccupationResponsableSilo       Occupation = "responsable-silo"
	OccupationChauffeurLivreur      Occupation = "chauffeur-livreur"
	OccupationMagasinierVendeur     Occupation = "magasinier-vendeur"
	OccupationTechnicoCommercial    Occupation = "technico-commercial"
	OccupationConseillerAgricole    Occupation = "conseiller-agricole"
	OccupationCommercialGrains      Occupation = "commercial-grains"
	OccupationResponsableDepot      Occupation = "responsable-depot"
	OccupationResponsableLogistique Occupation = "responsable-logistique"
	OccupationTechnicienMaintenance Occupation = "technicien-maintenance"
	OccupationConducteurLigne       Occupation = "conducteur-ligne"
	OccupationResponsableQualite    Occupation = "responsable-qualite"
)

var occupationLabels = map[Occupation]string{
	OccupationAgentSilo:             "Agent de silo",
	OccupationResponsableSilo:       "Responsable de silo",
	OccupationChauffeurLivreur:      "Chauffeur livreur",
	OccupationMagasinierVendeur:     "Magasinier vendeur",
	OccupationTechnicoCommercial:    "Technico-commercial",
	OccupationConseillerAgricole:    "Conseiller agricole",
	OccupationCommercialGrains:      "Commercial grains",
	OccupationResponsableDepot:      "Responsable de dépôt",
	OccupationResponsableLogistique: "Responsable logistique",
	OccupationTechnicienMaintenance: "Technicien de maintenance",
	OccupationConducteurLigne:       "Conducteur de ligne",
	OccupationResponsableQualite:    "Responsable qualité",
}

// AllOccupations returns the occupations in display order.
func AllOccupations() []Occupation {
	return []Occupation{
		OccupationAgentSilo,
		OccupationResponsableSilo,
		OccupationChauffeurLivreur,
		OccupationMagasinierVendeur,
		OccupationTechnicoCommercial,
		OccupationConseillerAgricole,
		OccupationCommercialGrains,
		OccupationResponsableDepot,
		OccupationResponsableLogistique,
		OccupationTechnicienMaintenance,
		OccupationConducteurLigne,
		OccupationResponsableQualite,
	}
}

// Label returns the human-readable occupation name, or the raw value if unknown.
func (o Occupation) Label() string {
	if label, ok := occupationLabels[o]; ok {
		return label
	}
	return string(o)
}

// Valid reports whether o belongs to the enumeration.
func (o Occupation) Valid() bool {
	_, ok := occupationLabels[o]
	return ok
}

// ParseOccupation resolves a slug or a free-text label ("Agent de silo", "agent de silo",
// "AGENT-SILO") to an Occupation. Matching is done on normalized text so accents and
// punctuation do not matter.
func ParseOccupation(input string) (Occupation, bool) {
	if o := Occupation(input); o.Valid() {
		return o, true
	}
	key := parsing.CompactKey(input)
	if key == "" {
		return "", false
	}
	for _, o := range AllOccupations() {
		if parsing.CompactKey(string(o)) == key || parsing.CompactKey(o.Label()) == key {
			return o, true
		}
	}
	return "", false
}

// OccupationInfo is the wire form of an occupation for the front-end form.
type OccupationInfo struct {
	Slug  Occupation `json:"slug"`
	Label string     `json:"label"`
}
