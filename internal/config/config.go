// Package config provides configuration loading and validation for the server and CLI.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Duration is a time.Duration that reads from JSON as "8s" or as a number of seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(seconds * float64(time.Second))
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Config represents the service configuration. It can be loaded from a JSON file and from
// the environment; every field is optional and missing values use defaults.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	AllowOrigin string `json:"allow_origin,omitempty"` // CORS origin, "*" when empty

	// Dataset
	DatasetPath string `json:"dataset_path,omitempty"` // Overrides the embedded dataset

	// Search policy
	RadiusKm           float64 `json:"radius_km,omitempty"`           // Dataset search radius
	HardCapKm          float64 `json:"hard_cap_km,omitempty"`         // Enrichment distance cap
	MaxDatasetResults  int     `json:"max_dataset_results,omitempty"` // Dataset matcher truncation
	EnrichLimit        int     `json:"enrich_limit,omitempty"`        // Enrichment truncation
	MinResults         int     `json:"min_results,omitempty"`         // Enrich below this many dataset results
	MaxAvgDistanceKm   float64 `json:"max_avg_distance_km,omitempty"` // Enrich above this average distance
	EnrichmentDisabled bool    `json:"enrichment_disabled,omitempty"` // Never call web search
	EnrichParallelism  int     `json:"enrich_parallelism,omitempty"`  // Concurrent candidate checks

	// Credentials
	GeminiAPIKey string `json:"gemini_api_key,omitempty"`
	SearchAPIKey string `json:"search_api_key,omitempty"`
	SearchCX     string `json:"search_cx,omitempty"`

	// Providers
	GeocoderURL         string   `json:"geocoder_url,omitempty"`     // BAN endpoint
	CityLocatorURL      string   `json:"city_locator_url,omitempty"` // Nominatim endpoint
	HTTPTimeout         Duration `json:"http_timeout,omitempty"`
	URLCheckTimeout     Duration `json:"url_check_timeout,omitempty"`
	CityLocatorInterval Duration `json:"city_locator_interval,omitempty"`

	Verbose bool `json:"verbose,omitempty"`
}

// Defaults returns the production configuration without credentials.
func Defaults() Config {
	return Config{
		Port:                8080,
		AllowOrigin:         "*",
		RadiusKm:            80,
		HardCapKm:           200,
		MaxDatasetResults:   30,
		EnrichLimit:         10,
		MinResults:          5,
		MaxAvgDistanceKm:    60,
		EnrichParallelism:   6,
		GeocoderURL:         "https://api-adresse.data.gouv.fr",
		CityLocatorURL:      "https://nominatim.openstreetmap.org",
		HTTPTimeout:         Duration(8 * time.Second),
		URLCheckTimeout:     Duration(6 * time.Second),
		CityLocatorInterval: Duration(time.Second),
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads the configuration from environment variables. Unset variables leave
// their field at the zero value; malformed ones are an error.
func FromEnv() (*Config, error) {
	cfg := &Config{
		AllowOrigin:    os.Getenv("ALLOW_ORIGIN"),
		DatasetPath:    os.Getenv("DATASET_PATH"),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		SearchAPIKey:   os.Getenv("GOOGLE_SEARCH_API_KEY"),
		SearchCX:       os.Getenv("GOOGLE_SEARCH_CX"),
		GeocoderURL:    os.Getenv("GEOCODER_URL"),
		CityLocatorURL: os.Getenv("CITY_LOCATOR_URL"),
	}

	var errs []error
	intVar := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	floatVar := func(key string, dst *float64) {
		if v := os.Getenv(key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	durationVar := func(key string, dst *Duration) {
		if v := os.Getenv(key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("invalid %s: %w", key, err))
				return
			}
			*dst = Duration(d)
		}
	}

	intVar("PORT", &cfg.Port)
	floatVar("RADIUS_KM", &cfg.RadiusKm)
	floatVar("HARD_CAP_KM", &cfg.HardCapKm)
	intVar("MAX_DATASET_RESULTS", &cfg.MaxDatasetResults)
	intVar("ENRICH_LIMIT", &cfg.EnrichLimit)
	intVar("MIN_RESULTS", &cfg.MinResults)
	floatVar("MAX_AVG_DISTANCE_KM", &cfg.MaxAvgDistanceKm)
	intVar("ENRICH_PARALLELISM", &cfg.EnrichParallelism)
	durationVar("HTTP_TIMEOUT", &cfg.HTTPTimeout)
	durationVar("URL_CHECK_TIMEOUT", &cfg.URLCheckTimeout)
	durationVar("CITY_LOCATOR_INTERVAL", &cfg.CityLocatorInterval)

	if v := os.Getenv("ENRICHMENT_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid ENRICHMENT_ENABLED: %w", err))
		} else {
			cfg.EnrichmentDisabled = !enabled
		}
	}
	if v := os.Getenv("VERBOSE"); v != "" {
		cfg.Verbose, _ = strconv.ParseBool(v)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("config error: %v", errs)
	}
	return cfg, nil
}

// Load builds the effective configuration: environment first, then the optional JSON
// file at path, then Defaults. The result is validated.
func Load(path string) (*Config, error) {
	env, err := FromEnv()
	if err != nil {
		return nil, err
	}

	merged := *env
	if path != "" {
		file, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		merged = merged.MergeWithDefaults(*file)
	}
	merged = merged.MergeWithDefaults(Defaults())

	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// Validate checks that the configuration has valid values.
// Credentials are not required here: their absence only disables enrichment.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.RadiusKm < 0 || c.HardCapKm < 0 || c.MaxAvgDistanceKm < 0 {
		return fmt.Errorf("config error: distances must be non-negative")
	}
	if c.MaxDatasetResults < 0 || c.EnrichLimit < 0 || c.MinResults < 0 {
		return fmt.Errorf("config error: result counts must be non-negative")
	}
	if c.EnrichParallelism < 0 || c.EnrichParallelism > 32 {
		return fmt.Errorf("config error: 'enrich_parallelism' must be between 0 and 32")
	}
	if c.HTTPTimeout < 0 || c.URLCheckTimeout < 0 || c.CityLocatorInterval < 0 {
		return fmt.Errorf("config error: durations must be non-negative")
	}

	for name, raw := range map[string]string{"geocoder_url": c.GeocoderURL, "city_locator_url": c.CityLocatorURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("config error: '%s' must be an http(s) URL: %s", name, raw)
		}
	}

	if c.DatasetPath != "" {
		if _, err := os.Stat(c.DatasetPath); os.IsNotExist(err) {
			return fmt.Errorf("config error: dataset file not found: %s", c.DatasetPath)
		}
	}

	return nil
}

// MissingCredentials lists the environment keys of the enrichment credentials that
// are not set.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.GeminiAPIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if c.SearchAPIKey == "" {
		missing = append(missing, "GOOGLE_SEARCH_API_KEY")
	}
	if c.SearchCX == "" {
		missing = append(missing, "GOOGLE_SEARCH_CX")
	}
	return missing
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.AllowOrigin == "" {
		result.AllowOrigin = defaults.AllowOrigin
	}
	if result.DatasetPath == "" {
		result.DatasetPath = defaults.DatasetPath
	}
	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.SearchAPIKey == "" {
		result.SearchAPIKey = defaults.SearchAPIKey
	}
	if result.SearchCX == "" {
		result.SearchCX = defaults.SearchCX
	}
	if result.GeocoderURL == "" {
		result.GeocoderURL = defaults.GeocoderURL
	}
	if result.CityLocatorURL == "" {
		result.CityLocatorURL = defaults.CityLocatorURL
	}

	// Numeric fields: use default if zero
	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.RadiusKm == 0 {
		result.RadiusKm = defaults.RadiusKm
	}
	if result.HardCapKm == 0 {
		result.HardCapKm = defaults.HardCapKm
	}
	if result.MaxDatasetResults == 0 {
		result.MaxDatasetResults = defaults.MaxDatasetResults
	}
	if result.EnrichLimit == 0 {
		result.EnrichLimit = defaults.EnrichLimit
	}
	if result.MinResults == 0 {
		result.MinResults = defaults.MinResults
	}
	if result.MaxAvgDistanceKm == 0 {
		result.MaxAvgDistanceKm = defaults.MaxAvgDistanceKm
	}
	if result.EnrichParallelism == 0 {
		result.EnrichParallelism = defaults.EnrichParallelism
	}
	if result.HTTPTimeout == 0 {
		result.HTTPTimeout = defaults.HTTPTimeout
	}
	if result.URLCheckTimeout == 0 {
		result.URLCheckTimeout = defaults.URLCheckTimeout
	}
	if result.CityLocatorInterval == 0 {
		result.CityLocatorInterval = defaults.CityLocatorInterval
	}

	// Bool fields: true in either source wins, since unset and false look the same
	result.EnrichmentDisabled = result.EnrichmentDisabled || defaults.EnrichmentDisabled
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}
