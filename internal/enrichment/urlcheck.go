package enrichment

import (
	"context"
	"net/url"
	"path"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/formation-finder/internal/fetch"
	"github.com/jonathan/formation-finder/internal/parsing"
	"github.com/jonathan/formation-finder/internal/research"
)

// Rejection reasons reported by URL checks.
const (
	ReasonInvalidURL     = "invalid_url"
	ReasonSameDomain     = "same_domain"
	ReasonNoiseSite      = "noise_site"
	ReasonDocument       = "document"
	ReasonArticleOrJob   = "article_or_job"
	ReasonUnreachable    = "unreachable"
	ReasonNoTrainingSign = "no_training_signal"
)

// URLChecker decides whether a candidate's two reference URLs are credible.
type URLChecker interface {
	CheckPair(ctx context.Context, url1, url2 string) (bool, string)
}

// Words that mark a page about a training program.
var trainingSignals = []string{
	"formation", "formations", "diplome", "diplomes", "cap", "capa", "bac pro", "bp", "bts", "btsa",
	"licence", "bachelor", "cqp", "titre professionnel", "certificat", "rncp",
	"lycee", "legta", "lpa", "epl", "cfa", "cfppa", "mfr", "iut", "universite", "ecole", "campus",
	"apprentissage", "alternance", "enseignement", "cursus", "cycle", "scolarite", "inscription",
}

// Words that mark news, blog posts, job ads and forums.
var articleSignals = []string{
	"actualite", "actualites", "actu", "article", "articles", "blog", "news", "presse",
	"emploi", "emplois", "offre emploi", "offres emploi", "recrutement", "job", "jobs",
	"annonce", "annonces", "forum", "agenda", "evenement", "evenements",
}

var documentExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".odt": true, ".xls": true, ".xlsx": true, ".ppt": true, ".pptx": true,
}

type probeFunc func(ctx context.Context, urlStr string, opts *fetch.Options) (*fetch.Result, error)

// URLValidator checks reference URLs by their text and by a bounded probe of the page.
type URLValidator struct {
	opts   *fetch.Options
	probe  probeFunc
	logger *zap.Logger
}

// NewURLValidator creates a validator probing pages with opts (nil for defaults).
func NewURLValidator(opts *fetch.Options, logger *zap.Logger) *URLValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &URLValidator{
		opts:   opts,
		probe:  fetch.URL,
		logger: logger,
	}
}

// CheckPair requires two URLs on different registrable domains that both look like
// training pages. Both pages are probed concurrently.
func (v *URLValidator) CheckPair(ctx context.Context, url1, url2 string) (bool, string) {
	if research.RegistrableDomain(url1) == "" || research.RegistrableDomain(url2) == "" {
		return false, ReasonInvalidURL
	}
	if research.SameSite(url1, url2) {
		return false, ReasonSameDomain
	}

	var ok1, ok2 bool
	var reason1, reason2 string
	var g errgroup.Group
	g.Go(func() error {
		ok1, reason1 = v.Check(ctx, url1)
		return nil
	})
	g.Go(func() error {
		ok2, reason2 = v.Check(ctx, url2)
		return nil
	})
	_ = g.Wait()

	if !ok1 {
		return false, reason1
	}
	if !ok2 {
		return false, reason2
	}
	return true, ""
}

// Check validates a single URL. Any network failure, timeout or non-2xx status fails it.
func (v *URLValidator) Check(ctx context.Context, rawURL string) (bool, string) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return false, ReasonInvalidURL
	}
	if research.IsNoiseSite(rawURL) {
		return false, ReasonNoiseSite
	}
	if documentExtensions[strings.ToLower(path.Ext(parsed.Path))] {
		return false, ReasonDocument
	}

	urlText := urlWords(parsed)
	if parsing.ContainsAnyWord(urlText, articleSignals) {
		return false, ReasonArticleOrJob
	}

	page, err := v.probe(ctx, rawURL, v.opts)
	if err != nil {
		v.logger.Debug("url probe failed", zap.String("url", rawURL), zap.Error(err))
		return false, ReasonUnreachable
	}
	if page.IsDocument() {
		return false, ReasonDocument
	}
	if page.OGType == "article" {
		return false, ReasonArticleOrJob
	}

	titleText := parsing.Normalize(page.Title)
	if parsing.ContainsAnyWord(titleText, articleSignals) {
		return false, ReasonArticleOrJob
	}

	if parsing.ContainsAnyWord(urlText, trainingSignals) ||
		fetch.IsKnownDirectory(rawURL) ||
		parsing.ContainsAnyWord(titleText, trainingSignals) {
		return true, ""
	}
	return false, ReasonNoTrainingSign
}

// urlWords splits the host and path of a URL into normalized words.
func urlWords(u *url.URL) string {
	raw := u.Hostname() + " " + u.Path
	if unescaped, err := url.PathUnescape(u.Path); err == nil {
		raw = u.Hostname() + " " + unescaped
	}
	spaced := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, raw)
	return parsing.Normalize(spaced)
}
