//go:build gemini

package gemini

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/impact-simulator/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Gemini API and require a valid GEMINI_API_KEY env var.
// Run with: go test -tags=gemini ./internal/adapter/gemini/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	key := os.Getenv("GEMINI_API_KEY")
	if key == "" {
		t.Fatal("GEMINI_API_KEY must be set to run smoke tests")
	}
	return &Client{
		apiKey:     key,
		model:      "gemini-2.5-flash",
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    "https://generativelanguage.googleapis.com/v1beta",
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_Narrate(t *testing.T) {
	c := smokeClient(t)
	p, calc := testInput()

	narrative, err := c.Narrate(context.Background(), p, calc)
	require.NoError(t, err)
	assert.NotEmpty(t, narrative)
	t.Logf("narrative: %s", narrative)
}
