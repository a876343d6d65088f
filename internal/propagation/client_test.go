package propagation

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hampuff/pkg/domainerrors"
)

const sampleFeed = `<?xml version="1.0"?>
<solar>
  <solardata>
    <updated> 30 Aug 2026 1435 GMT</updated>
    <solarflux>152</solarflux>
    <aindex>7</aindex>
    <kindex>2</kindex>
    <sunspots>83</sunspots>
    <xray>B1.4</xray>
    <solarwind>371.2</solarwind>
    <muf>21.45</muf>
  </solardata>
</solar>`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestReport_ParsesFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewClient(testLogger(), WithBaseURL(srv.URL))
	report, err := client.Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 8, 30, 14, 35, 0, 0, time.UTC), report.Updated)
	assert.Equal(t, "152", report.SolarFlux)
	assert.Equal(t, "2", report.KIndex)
	assert.Equal(t, "21.45", report.MUF)
}

func TestReport_CachesWithinTTL(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	client := NewClient(testLogger(), WithBaseURL(srv.URL), WithCacheTTL(time.Hour))

	for i := 0; i < 5; i++ {
		_, err := client.Report(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), hits.Load())
}

func TestReport_UpstreamFailureIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testLogger(), WithBaseURL(srv.URL))
	_, err := client.Report(context.Background())
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.CodeUpstreamUnavailable))
}

func TestReport_MalformedFeedIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))
	defer srv.Close()

	client := NewClient(testLogger(), WithBaseURL(srv.URL))
	_, err := client.Report(context.Background())
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.CodeUpstreamUnavailable))
}

func TestFormat_RendersTimezoneAndNAFallbacks(t *testing.T) {
	report := Report{
		Updated:   time.Date(2026, 8, 30, 14, 35, 0, 0, time.UTC),
		SolarFlux: "152",
		AIndex:    "7",
		KIndex:    "2",
		Sunspots:  "83",
		MUF:       "21.45",
	}

	tz, ok := ParseTimezone("pdt")
	require.True(t, ok)

	text := report.Format(tz)
	assert.Contains(t, text, "[Hampuff - PDT] Updated: Sun 30 Aug 07:35")
	assert.Contains(t, text, "Solar Flux  = 152")
	assert.Contains(t, text, "XRay        = N/A")
	assert.Contains(t, text, "Solar Winds = N/A")
}

func TestParseTimezone(t *testing.T) {
	for _, token := range SupportedTokens() {
		tz, ok := ParseTimezone(token)
		require.True(t, ok, token)
		assert.Equal(t, token, tz.Token)
	}

	// Case-insensitive, including the mixed-case Chamorro token.
	tz, ok := ParseTimezone("chst")
	require.True(t, ok)
	assert.Equal(t, "ChST", tz.Token)

	_, ok = ParseTimezone("XYZ")
	assert.False(t, ok)
}
