package rules

import "github.com/jonathan/formation-finder/internal/types"

// Terms that make a title off-topic for every trade of the sector.
var sectorForbidden = []string{
	"equitation", "equin", "equide", "cheval", "hippique", "palefrenier", "marechal",
	"canin", "felin", "animalerie", "toilettage", "soigneur animalier",
	"esthetique", "coiffure", "fleuriste",
}

func withSector(extra ...string) []string {
	out := make([]string, 0, len(sectorForbidden)+len(extra))
	out = append(out, sectorForbidden...)
	return append(out, extra...)
}

var relevance = map[types.Occupation]RuleSet{
	types.OccupationAgentSilo: {
		MustAny:   []string{"silo", "stockage", "cereales", "grain", "collecte", "cgea", "grandes cultures", "agroequipement"},
		ForbidAny: withSector("viticulture", "oenologie", "horticulture", "paysage"),
	},
	types.OccupationResponsableSilo: {
		MustAny:   []string{"silo", "stockage", "cereales", "grain", "collecte", "acse", "agronomie", "grandes cultures", "responsable d exploitation"},
		ForbidAny: withSector("viticulture", "oenologie", "horticulture", "paysage"),
	},
	types.OccupationChauffeurLivreur: {
		MustAny:   []string{"conducteur routier", "transport routier", "livreur", "livraison", "chauffeur", "poids lourd", "permis c", "logistique", "conduite d engins"},
		ForbidAny: withSector("transport de voyageurs", "taxi", "vtc", "ambulancier", "autocar"),
	},
	types.OccupationMagasinierVendeur: {
		MustAny:   []string{"magasinier", "vendeur", "vente", "conseil vente", "agrofourniture", "jardinerie", "technicien conseil vente", "tcv", "logistique"},
		ForbidAny: withSector("pret a porter", "cosmetique"),
	},
	types.OccupationTechnicoCommercial: {
		MustAny:   []string{"technico commercial", "technicocommercial", "commerce", "commercial", "negociation", "agrofourniture", "tcv", "technicien conseil vente", "vente"},
		ForbidAny: withSector("immobilier", "banque", "assurance", "pret a porter"),
	},
	types.OccupationConseillerAgricole: {
		MustAny:   []string{"conseil", "agronomie", "acse", "productions vegetales", "grandes cultures", "agriculture", "agronome", "ingenieur agri"},
		ForbidAny: withSector("conseiller funeraire", "conseiller bancaire", "immobilier"),
	},
	types.OccupationCommercialGrains: {
		MustAny:   []string{"grain", "cereales", "negoce", "commerce international", "commercial", "trading", "agrofourniture", "technico commercial"},
		ForbidAny: withSector("immobilier", "banque", "assurance"),
	},
	types.OccupationResponsableDepot: {
		MustAny:   []string{"depot", "magasin", "logistique", "agrofourniture", "management", "responsable de rayon", "gestion"},
		ForbidAny: withSector("pret a porter"),
	},
	types.OccupationResponsableLogistique: {
		MustAny:   []string{"logistique", "supply chain", "transport", "entreposage", "flux", "gestion des stocks"},
		ForbidAny: withSector("transport de voyageurs", "ambulancier"),
	},
	types.OccupationTechnicienMaintenance: {
		MustAny:   []string{"maintenance", "agroequipement", "electrotechnique", "mecanique", "genie industriel", "automatisme", "materiels agricoles"},
		ForbidAny: withSector("maintenance informatique", "aeronautique", "nautisme", "automobile"),
	},
	types.OccupationConducteurLigne: {
		MustAny:   []string{"conducteur de ligne", "pilote de ligne", "production", "bio industries", "bioindustries", "transformation", "agroalimentaire", "conduite de machines", "nutrition animale"},
		ForbidAny: withSector("pilote de ligne aerienne", "aeronautique"),
	},
	types.OccupationResponsableQualite: {
		MustAny:   []string{"qualite", "hygiene", "securite alimentaire", "haccp", "agroalimentaire", "anabiotec", "bioanalyses", "controle"},
		ForbidAny: withSector("qualite de l air", "qualite de vie au travail"),
	},
}

// Profile holds the enrichment-specific keyword lists of an occupation. JobKeywords
// check that an externally found candidate is coherent with the trade; Banned filters
// noise typical of web results (unrelated transport, animal care, ...).
type Profile struct {
	JobKeywords []string
	Banned      []string
}

// commonBanned is the enrichment noise shared by every occupation.
var commonBanned = []string{
	"equitation", "cheval", "hippique", "canin", "animalerie", "toilettage",
	"auxiliaire veterinaire", "soigneur", "transport de voyageurs", "taxi", "vtc", "ambulancier",
}

func withCommonBanned(extra ...string) []string {
	out := make([]string, 0, len(commonBanned)+len(extra))
	out = append(out, commonBanned...)
	return append(out, extra...)
}

var enrichment = map[types.Occupation]Profile{
	types.OccupationAgentSilo: {
		JobKeywords: []string{"silo", "stockage", "cereales", "grain", "collecte", "agricole", "cgea"},
		Banned:      withCommonBanned("viticulture", "paysage"),
	},
	types.OccupationResponsableSilo: {
		JobKeywords: []string{"silo", "stockage", "cereales", "grain", "collecte", "agricole", "acse"},
		Banned:      withCommonBanned("viticulture", "paysage"),
	},
	types.OccupationChauffeurLivreur: {
		JobKeywords: []string{"chauffeur", "livreur", "livraison", "conducteur routier", "transport de marchandises", "poids lourd"},
		Banned:      withCommonBanned("autocar", "bus"),
	},
	types.OccupationMagasinierVendeur: {
		JobKeywords: []string{"magasinier", "vendeur", "vente", "agrofourniture", "jardinerie", "conseil vente"},
		Banned:      withCommonBanned(),
	},
	types.OccupationTechnicoCommercial: {
		JobKeywords: []string{"technico commercial", "technicocommercial", "commercial", "vente", "negociation", "agrofourniture"},
		Banned:      withCommonBanned("immobilier", "assurance"),
	},
	types.OccupationConseillerAgricole: {
		JobKeywords: []string{"conseil", "agronomie", "agricole", "acse", "productions vegetales", "agriculture"},
		Banned:      withCommonBanned("bancaire", "immobilier"),
	},
	types.OccupationCommercialGrains: {
		JobKeywords: []string{"grain", "cereales", "negoce", "commercial", "agricole", "commerce"},
		Banned:      withCommonBanned("immobilier", "assurance"),
	},
	types.OccupationResponsableDepot: {
		JobKeywords: []string{"depot", "magasin", "logistique", "agrofourniture", "gestion", "management"},
		Banned:      withCommonBanned(),
	},
	types.OccupationResponsableLogistique: {
		JobKeywords: []string{"logistique", "supply chain", "transport", "entreposage", "flux"},
		Banned:      withCommonBanned(),
	},
	types.OccupationTechnicienMaintenance: {
		JobKeywords: []string{"maintenance", "agroequipement", "mecanique", "electrotechnique", "automatisme"},
		Banned:      withCommonBanned("informatique", "aeronautique", "automobile"),
	},
	types.OccupationConducteurLigne: {
		JobKeywords: []string{"conducteur de ligne", "pilote de ligne", "production", "agroalimentaire", "bio industries", "transformation"},
		Banned:      withCommonBanned("aeronautique", "aerien"),
	},
	types.OccupationResponsableQualite: {
		JobKeywords: []string{"qualite", "hygiene", "haccp", "agroalimentaire", "securite alimentaire"},
		Banned:      withCommonBanned("qualite de l air"),
	},
}

// EnrichmentProfile returns the enrichment keyword lists of an occupation. The second
// return value is false when the occupation has no profile, in which case callers fall
// back to tokens of the occupation label.
func EnrichmentProfile(o types.Occupation) (Profile, bool) {
	p, ok := enrichment[o]
	return p, ok
}
