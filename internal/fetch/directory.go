package fetch

import (
	"net/url"
	"strings"
)

// Directory is a known public catalog of French training programs.
type Directory string

const (
	// DirectoryOnisep is the national education and careers information office
	DirectoryOnisep Directory = "onisep"
	// DirectoryFranceCompetences hosts the RNCP register
	DirectoryFranceCompetences Directory = "france-competences"
	// DirectoryParcoursup is the higher-education admission platform
	DirectoryParcoursup Directory = "parcoursup"
	// DirectoryMonCompteFormation is the personal training account catalog
	DirectoryMonCompteFormation Directory = "mon-compte-formation"
	// DirectoryLaBonneAlternance lists apprenticeship programs
	DirectoryLaBonneAlternance Directory = "la-bonne-alternance"
	// DirectoryChlorofil is the agricultural education portal
	DirectoryChlorofil Directory = "chlorofil"
	// DirectoryUnknown is an unrecognized site
	DirectoryUnknown Directory = "unknown"
)

var directoryHosts = []struct {
	host      string
	directory Directory
}{
	{"onisep.fr", DirectoryOnisep},
	{"francecompetences.fr", DirectoryFranceCompetences},
	{"parcoursup.fr", DirectoryParcoursup},
	{"parcoursup.gouv.fr", DirectoryParcoursup},
	{"moncompteformation.gouv.fr", DirectoryMonCompteFormation},
	{"labonnealternance.apprentissage.beta.gouv.fr", DirectoryLaBonneAlternance},
	{"chlorofil.fr", DirectoryChlorofil},
}

// DetectDirectory identifies a known training directory from a URL.
func DetectDirectory(urlStr string) Directory {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return DirectoryUnknown
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
	for _, d := range directoryHosts {
		if host == d.host || strings.HasSuffix(host, "."+d.host) {
			return d.directory
		}
	}

	return DirectoryUnknown
}

// IsKnownDirectory reports whether urlStr belongs to a known training directory.
func IsKnownDirectory(urlStr string) bool {
	return DetectDirectory(urlStr) != DirectoryUnknown
}
