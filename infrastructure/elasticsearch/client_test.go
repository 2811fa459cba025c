package elasticsearch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/infrastructure/retry"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func okResponse(body string) *http.Response {
	h := http.Header{}
	h.Set("X-Elastic-Product", "Elasticsearch")
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     h,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func fastRetry() *retry.Config {
	return &retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input, want string
	}{
		{"http://elasticsearch:9200", "http://elasticsearch:9200"},
		{"https://elasticsearch:9200", "https://elasticsearch:9200"},
		{"elasticsearch:9200", "http://elasticsearch:9200"},
		{"", "http://localhost:9200"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeURL(tt.input), "input %q", tt.input)
	}
}

func TestConfig_SetDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{URL: "http://custom:9200", MaxRetries: 5}
	cfg.SetDefaults()

	assert.Equal(t, "http://custom:9200", cfg.URL)
	assert.Equal(t, 5, cfg.MaxRetries)
	assert.Equal(t, 5*time.Second, cfg.PingTimeout)
	require.NotNil(t, cfg.RetryConfig)
	assert.Equal(t, 5, cfg.RetryConfig.MaxAttempts)
}

func TestCreateTransport(t *testing.T) {
	t.Parallel()

	plain, err := createTransport(nil)
	require.NoError(t, err)
	assert.Nil(t, plain.TLSClientConfig)

	secured, err := createTransport(&TLSConfig{Enabled: true, InsecureSkipVerify: true})
	require.NoError(t, err)
	require.NotNil(t, secured.TLSClientConfig)
	assert.True(t, secured.TLSClientConfig.InsecureSkipVerify)

	_, err = createTransport(&TLSConfig{Enabled: true, CAFile: "/nonexistent/ca.pem"})
	assert.Error(t, err)
}

func TestNewClient_PingSucceeds(t *testing.T) {
	t.Parallel()

	transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
		return okResponse(`{"version":{"number":"8.19.3"}}`), nil
	})

	client, err := NewClient(context.Background(), Config{Transport: transport, RetryConfig: fastRetry()}, logger.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewClient_UnreachableCluster(t *testing.T) {
	t.Parallel()

	calls := 0
	transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("dial tcp: connection refused")
	})

	_, err := NewClient(context.Background(), Config{
		Transport:   transport,
		MaxRetries:  1,
		RetryConfig: fastRetry(),
	}, logger.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to elasticsearch")
	assert.GreaterOrEqual(t, calls, 2)
}
