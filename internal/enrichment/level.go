package enrichment

import (
	"regexp"

	"github.com/jonathan/formation-finder/internal/parsing"
	"github.com/jonathan/formation-finder/internal/types"
)

// "bac+2" normalizes to "bac2" and "bac + 2" to "bac 2".
var bacPlusPattern = regexp.MustCompile(`(?:^| )bac ?([0-9])(?: |$)`)

// Checked from the highest level down so "BTSA" never falls through to "bac".
var levelKeywords = []struct {
	level    types.Level
	keywords []string
}{
	{types.Level6, []string{"but", "licence", "bachelor"}},
	{types.Level5, []string{"bts", "btsa", "dut", "deust"}},
	{types.Level4, []string{"bp", "brevet professionnel", "bac pro", "bac", "baccalaureat", "bpa"}},
	{types.Level3, []string{"cap", "capa", "bep", "bepa"}},
}

// InferLevel derives the qualification level from a free-text diploma hint. Only whole
// words count ("debut" is not "BUT"); anything unrecognized is not applicable.
func InferLevel(hint string) types.Level {
	text := parsing.Normalize(hint)
	if text == "" {
		return types.LevelNotApplicable
	}

	if m := bacPlusPattern.FindStringSubmatch(text); m != nil {
		switch m[1] {
		case "2":
			return types.Level5
		case "3":
			return types.Level6
		default:
			return types.LevelNotApplicable
		}
	}

	for _, lk := range levelKeywords {
		if parsing.ContainsAnyWord(text, lk.keywords) {
			return lk.level
		}
	}

	return types.LevelNotApplicable
}
