package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/formation-finder/internal/catalog"
	"github.com/jonathan/formation-finder/internal/config"
	"github.com/jonathan/formation-finder/internal/enrichment"
	"github.com/jonathan/formation-finder/internal/fetch"
	"github.com/jonathan/formation-finder/internal/geo"
	"github.com/jonathan/formation-finder/internal/llm"
	"github.com/jonathan/formation-finder/internal/observability"
	"github.com/jonathan/formation-finder/internal/pipeline"
	"github.com/jonathan/formation-finder/internal/research"
)

// loadConfig reads the effective configuration; --verbose overrides the config value.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose {
		cfg.Verbose = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := observability.NewLogger(cfg.Verbose)
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}

// buildService wires the dataset, geocoders and, when credentials allow, the web
// enrichment stack. The returned cleanup releases the LLM client.
func buildService(ctx context.Context, cfg *config.Config, onProgress pipeline.ProgressCallback, logger *zap.Logger) (*pipeline.Service, func(), error) {
	cleanup := func() {}

	cat, err := catalog.Load(cfg.DatasetPath)
	if err != nil {
		return nil, cleanup, err
	}
	logger.Info("dataset loaded",
		zap.String("version", cat.Version),
		zap.Int("entries", cat.Len()),
		zap.Int("excluded", cat.Excluded()))

	timeout := time.Duration(cfg.HTTPTimeout)
	geocoder := geo.NewBANGeocoder(cfg.GeocoderURL, timeout)

	deps := pipeline.Deps{
		Matcher:  catalog.NewMatcher(cat, cfg.MaxDatasetResults, logger),
		Geocoder: geocoder,
		Locator:  geo.NewNominatimLocator(cfg.CityLocatorURL, time.Duration(cfg.CityLocatorInterval), timeout),
	}

	if missing := cfg.MissingCredentials(); len(missing) > 0 {
		deps.MissingCredentials = missing
		if !cfg.EnrichmentDisabled {
			logger.Warn("web enrichment unavailable, queries that need it will fail",
				zap.Strings("missing", missing))
		}
	} else {
		enricher, closeLLM, err := buildEnricher(ctx, cfg, geocoder, logger)
		if err != nil {
			return nil, cleanup, err
		}
		deps.Enricher = enricher
		cleanup = closeLLM
	}

	opts := pipeline.Options{
		RadiusKm:          cfg.RadiusKm,
		HardCapKm:         cfg.HardCapKm,
		MinResults:        cfg.MinResults,
		MaxAvgDistanceKm:  cfg.MaxAvgDistanceKm,
		EnrichLimit:       cfg.EnrichLimit,
		EnrichmentEnabled: !cfg.EnrichmentDisabled,
		OnProgress:        onProgress,
	}
	return pipeline.NewService(deps, opts, logger), cleanup, nil
}

func buildEnricher(ctx context.Context, cfg *config.Config, geocoder geo.Geocoder, logger *zap.Logger) (*enrichment.Enricher, func(), error) {
	searcher, err := research.NewGoogleSearcher(ctx, cfg.SearchAPIKey, cfg.SearchCX, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create search client: %w", err)
	}

	client, err := llm.NewGeminiClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	closeLLM := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close LLM client", zap.Error(err))
		}
	}

	probe := fetch.DefaultOptions()
	probe.Timeout = time.Duration(cfg.URLCheckTimeout)

	enricher := enrichment.NewEnricher(
		searcher,
		enrichment.NewLLMSummarizer(client, llm.TierLite, logger),
		enrichment.NewURLValidator(probe, logger),
		geo.NewStrictResolver(geocoder, geo.DefaultThresholds(), logger),
		cfg.EnrichParallelism,
		logger,
	)
	return enricher, closeLLM, nil
}
