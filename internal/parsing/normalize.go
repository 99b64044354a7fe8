// Package parsing provides text canonicalization shared by every matching step.
package parsing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ligatures are not decomposed by NFD, so they are spelled out before accent stripping.
var ligatures = strings.NewReplacer(
	"œ", "oe", "Œ", "oe",
	"æ", "ae", "Æ", "ae",
	"ß", "ss",
)

// apostrophes become word separators ("l'école" -> "l ecole").
var apostrophes = strings.NewReplacer(
	"'", " ", "’", " ", "‘", " ", "ʼ", " ", "`", " ",
)

// Normalize canonicalizes free text: lowercase, diacritics stripped, apostrophes turned
// into spaces, every character outside [a-z0-9] and whitespace removed, whitespace runs
// collapsed to one space, trimmed. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = ligatures.Replace(text)
	text = apostrophes.Replace(text)
	text = stripDiacritics(strings.ToLower(text))

	var sb strings.Builder
	sb.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(sb.String()), " ")
}

// CompactKey is Normalize restricted to alphanumerics: spaces are dropped too, so
// "Lycée  Agricole" and "lycee-agricole" produce the same key.
func CompactKey(text string) string {
	return strings.ReplaceAll(Normalize(text), " ", "")
}

// Tokens splits normalized text into words.
func Tokens(text string) []string {
	return strings.Fields(Normalize(text))
}

// ContainsKeyword reports whether the normalized keyword occurs as a substring of
// normalizedText. normalizedText must already be the output of Normalize.
// An empty keyword never matches.
func ContainsKeyword(normalizedText, keyword string) bool {
	k := Normalize(keyword)
	if k == "" {
		return false
	}
	return strings.Contains(normalizedText, k)
}

// ContainsAnyKeyword reports whether any keyword occurs in normalizedText.
func ContainsAnyKeyword(normalizedText string, keywords []string) bool {
	for _, k := range keywords {
		if ContainsKeyword(normalizedText, k) {
			return true
		}
	}
	return false
}

func stripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// ContainsWord reports whether the normalized keyword occurs in normalizedText as a run of
// whole words: "bts" matches "bts agricole" but not "btsa".
func ContainsWord(normalizedText, keyword string) bool {
	k := Normalize(keyword)
	if k == "" {
		return false
	}
	return strings.Contains(" "+normalizedText+" ", " "+k+" ")
}

// ContainsAnyWord reports whether any keyword occurs in normalizedText as whole words.
func ContainsAnyWord(normalizedText string, keywords []string) bool {
	for _, k := range keywords {
		if ContainsWord(normalizedText, k) {
			return true
		}
	}
	return false
}
