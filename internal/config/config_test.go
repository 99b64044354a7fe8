package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"port": 9090,
		"radius_km": 50,
		"enrich_limit": 4,
		"search_cx": "cx-123",
		"http_timeout": "3s",
		"url_check_timeout": 2,
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	err := os.WriteFile(tmpFile, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 50.0, cfg.RadiusKm)
	assert.Equal(t, 4, cfg.EnrichLimit)
	assert.Equal(t, "cx-123", cfg.SearchCX)
	assert.Equal(t, Duration(3*time.Second), cfg.HTTPTimeout)
	assert.Equal(t, Duration(2*time.Second), cfg.URLCheckTimeout)
	assert.True(t, cfg.Verbose)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"http_timeout": "soon"}`), 0644))

	_, err := LoadConfig(tmpFile)
	assert.Error(t, err)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("RADIUS_KM", "65.5")
	t.Setenv("MIN_RESULTS", "8")
	t.Setenv("ENRICHMENT_ENABLED", "false")
	t.Setenv("GEMINI_API_KEY", "gm-key")
	t.Setenv("CITY_LOCATOR_INTERVAL", "1500ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Port)
	assert.Equal(t, 65.5, cfg.RadiusKm)
	assert.Equal(t, 8, cfg.MinResults)
	assert.True(t, cfg.EnrichmentDisabled)
	assert.Equal(t, "gm-key", cfg.GeminiAPIKey)
	assert.Equal(t, Duration(1500*time.Millisecond), cfg.CityLocatorInterval)
	assert.Zero(t, cfg.HardCapKm, "unset variables stay zero")
}

func TestFromEnv_Malformed(t *testing.T) {
	t.Setenv("RADIUS_KM", "far")
	t.Setenv("HTTP_TIMEOUT", "8")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RADIUS_KM")
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestLoad_Precedence(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{"radius_km": 40, "hard_cap_km": 120}`), 0644))
	t.Setenv("RADIUS_KM", "25")

	cfg, err := Load(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.RadiusKm, "environment wins over file")
	assert.Equal(t, 120.0, cfg.HardCapKm, "file wins over defaults")
	assert.Equal(t, Defaults().MaxAvgDistanceKm, cfg.MaxAvgDistanceKm)
	assert.Equal(t, Defaults().GeocoderURL, cfg.GeocoderURL)
}

func TestValidate_NegativeValues(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "radius", cfg: Config{RadiusKm: -1}},
		{name: "enrich limit", cfg: Config{EnrichLimit: -1}},
		{name: "parallelism", cfg: Config{EnrichParallelism: 64}},
		{name: "port", cfg: Config{Port: 70000}},
		{name: "timeout", cfg: Config{HTTPTimeout: Duration(-time.Second)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.cfg.Validate())
		})
	}
}

func TestValidate_URLs(t *testing.T) {
	cfg := Defaults()
	cfg.GeocoderURL = "ftp://example.com"
	assert.Error(t, cfg.Validate())

	cfg = Defaults()
	cfg.CityLocatorURL = "not a url"
	assert.Error(t, cfg.Validate())
}

func TestValidate_DatasetPath(t *testing.T) {
	cfg := Defaults()
	cfg.DatasetPath = "/nonexistent/formations.json"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dataset file not found")

	cfg.DatasetPath = filepath.Join(t.TempDir(), "formations.json")
	require.NoError(t, os.WriteFile(cfg.DatasetPath, []byte(`{}`), 0644))
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestMissingCredentials(t *testing.T) {
	cfg := Config{SearchAPIKey: "key"}
	assert.Equal(t, []string{"GEMINI_API_KEY", "GOOGLE_SEARCH_CX"}, cfg.MissingCredentials())

	cfg = Config{GeminiAPIKey: "a", SearchAPIKey: "b", SearchCX: "c"}
	assert.Empty(t, cfg.MissingCredentials())
}

func TestMergeWithDefaults(t *testing.T) {
	cfg := &Config{
		RadiusKm:    30,
		SearchCX:    "from-config",
		HTTPTimeout: Duration(2 * time.Second),
	}

	result := cfg.MergeWithDefaults(Defaults())

	// Config values preserved
	assert.Equal(t, 30.0, result.RadiusKm)
	assert.Equal(t, "from-config", result.SearchCX)
	assert.Equal(t, Duration(2*time.Second), result.HTTPTimeout)

	// Defaults applied
	assert.Equal(t, 8080, result.Port)
	assert.Equal(t, 200.0, result.HardCapKm)
	assert.Equal(t, 6, result.EnrichParallelism)
	assert.Equal(t, Duration(time.Second), result.CityLocatorInterval)
	assert.False(t, result.EnrichmentDisabled)
}

func TestMergeWithDefaults_EmptyDefaults(t *testing.T) {
	cfg := &Config{Port: 9000}
	result := cfg.MergeWithDefaults(Config{})

	assert.Equal(t, 9000, result.Port)
	assert.Zero(t, result.RadiusKm)
	assert.Empty(t, result.GeocoderURL)
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := Duration(1500 * time.Millisecond).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1.5s"`, string(b))
}
