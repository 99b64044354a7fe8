package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNominatimLocator_Locate(t *testing.T) {
	var gotUA, gotCity string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCity = r.URL.Query().Get("city")
		_, _ = w.Write([]byte(`[{"lat":"47.3900","lon":"0.6889","display_name":"Tours, Indre-et-Loire"}]`))
	}))
	defer server.Close()

	l := NewNominatimLocator(server.URL, 10*time.Millisecond, time.Second)
	coords, err := l.Locate(context.Background(), "Tours")
	require.NoError(t, err)
	require.NotNil(t, coords)

	assert.Equal(t, "Tours", gotCity)
	assert.Equal(t, DefaultLocatorUserAgent, gotUA)
	assert.InDelta(t, 47.39, coords.Lat, 1e-9)
	assert.InDelta(t, 0.6889, coords.Lon, 1e-9)
}

func TestNominatimLocator_UnknownCity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	coords, err := NewNominatimLocator(server.URL, 10*time.Millisecond, time.Second).Locate(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Nil(t, coords)
}

func TestNominatimLocator_EnforcesMinimumInterval(t *testing.T) {
	var mu sync.Mutex
	var stamps []time.Time
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		stamps = append(stamps, time.Now())
		mu.Unlock()
		_, _ = w.Write([]byte(`[{"lat":"1","lon":"2"}]`))
	}))
	defer server.Close()

	interval := 100 * time.Millisecond
	l := NewNominatimLocator(server.URL, interval, time.Second)
	for _, city := range []string{"Blois", "Vendôme", "Romorantin"} {
		_, err := l.Locate(context.Background(), city)
		require.NoError(t, err)
	}

	require.Len(t, stamps, 3)
	for i := 1; i < len(stamps); i++ {
		// Small tolerance for scheduler jitter between limiter release and handler entry.
		assert.GreaterOrEqual(t, stamps[i].Sub(stamps[i-1]), interval-15*time.Millisecond)
	}
}

func TestNominatimLocator_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	l := NewNominatimLocator(server.URL, time.Hour, time.Second)
	_, err := l.Locate(context.Background(), "Blois")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Locate(ctx, "Blois")
	assert.Error(t, err)
}
