package research

import (
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Host extracts the lowercase host of a URL without a leading "www.".
func Host(urlStr string) string {
	urlStr = strings.TrimSpace(urlStr)
	if urlStr == "" {
		return ""
	}

	// Prepend scheme if missing
	if !strings.Contains(urlStr, "://") {
		urlStr = "https://" + urlStr
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}

	return strings.TrimPrefix(strings.ToLower(parsed.Hostname()), "www.")
}

// RegistrableDomain returns the eTLD+1 of a URL ("lycee.educagri.fr" and
// "www.educagri.fr" both give "educagri.fr"). Hosts without a public suffix fall back to
// the bare host.
func RegistrableDomain(urlStr string) string {
	host := Host(urlStr)
	if host == "" {
		return ""
	}
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	return domain
}

// SameSite reports whether two URLs belong to the same registrable domain. Unparseable
// URLs are never the same site.
func SameSite(a, b string) bool {
	da, db := RegistrableDomain(a), RegistrableDomain(b)
	return da != "" && da == db
}

// noiseDomains are sites whose pages describe news, jobs or social content, never a program.
var noiseDomains = []string{
	"indeed.com",
	"indeed.fr",
	"linkedin.com",
	"facebook.com",
	"instagram.com",
	"twitter.com",
	"x.com",
	"youtube.com",
	"tiktok.com",
	"pinterest.com",
	"glassdoor.com",
	"glassdoor.fr",
	"hellowork.com",
	"welcometothejungle.com",
	"leboncoin.fr",
	"wikipedia.org",
	"ouest-france.fr",
	"lefigaro.fr",
	"francebleu.fr",
}

// IsNoiseSite reports whether a URL is hosted on a job board, social network or news site.
func IsNoiseSite(urlStr string) bool {
	domain := RegistrableDomain(urlStr)
	if domain == "" {
		return false
	}
	for _, d := range noiseDomains {
		if domain == d {
			return true
		}
	}
	return false
}
