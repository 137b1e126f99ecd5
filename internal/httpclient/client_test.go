package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("SPEECHMEME_TEST_DURATION", "")
	assert.Equal(t, 5*time.Second, getEnvDuration("SPEECHMEME_TEST_DURATION", 5*time.Second))

	t.Setenv("SPEECHMEME_TEST_DURATION", "12")
	assert.Equal(t, 12*time.Second, getEnvDuration("SPEECHMEME_TEST_DURATION", 5*time.Second))

	t.Setenv("SPEECHMEME_TEST_DURATION", "1m30s")
	assert.Equal(t, 90*time.Second, getEnvDuration("SPEECHMEME_TEST_DURATION", 5*time.Second))

	t.Setenv("SPEECHMEME_TEST_DURATION", "soon")
	assert.Equal(t, 5*time.Second, getEnvDuration("SPEECHMEME_TEST_DURATION", 5*time.Second))
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "7")
	t.Setenv("HTTP_RESPONSE_HEADER_TIMEOUT", "")

	cfg := DefaultConfig()
	assert.Equal(t, 7*time.Second, cfg.Timeout)
	assert.Equal(t, 20*time.Second, cfg.ResponseHeaderTimeout)

	client := NewHTTPClient(&cfg)
	assert.Equal(t, 7*time.Second, client.Timeout)
}

func TestNewHTTPClient_UserAgent(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	cfg := DefaultConfig()
	cfg.UserAgent = "speechmeme-bot/test"
	client := NewHTTPClient(&cfg)

	resp, err := client.Get(server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "speechmeme-bot/test", got)
}
