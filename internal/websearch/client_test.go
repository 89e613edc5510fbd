package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vlabhub/labchat-go/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, domains []string) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.WebSearchConfig{
		Enabled:        true,
		BaseURL:        server.URL,
		APIKey:         "test-key",
		AllowedDomains: domains,
		MaxResults:     3,
	})
	require.NotNil(t, client)
	return client, server
}

func TestClient_SearchFiltersDomains(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-key", req.APIKey)
		assert.Equal(t, "resistor color code", req.Query)

		json.NewEncoder(w).Encode(searchResponse{Results: []Result{
			{Title: "Resistor", URL: "https://en.wikipedia.org/wiki/Resistor", Content: "..."},
			{Title: "Spam", URL: "https://spam.example.com/resistor", Content: "..."},
			{Title: "Color code", URL: "https://www.allaboutcircuits.com/tools/resistor-color-code", Content: "..."},
		}})
	}, []string{"wikipedia.org", "allaboutcircuits.com"})

	results, err := client.Search(context.Background(), "resistor color code")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Resistor", results[0].URL)
	assert.Equal(t, "https://www.allaboutcircuits.com/tools/resistor-color-code", results[1].URL)
}

func TestClient_SearchMaxResults(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		results := make([]Result, 0, 10)
		for i := 0; i < 10; i++ {
			results = append(results, Result{URL: "https://wikipedia.org/a", Title: "a"})
		}
		json.NewEncoder(w).Encode(searchResponse{Results: results})
	}, []string{"wikipedia.org"})

	results, err := client.Search(context.Background(), "ohm")
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestClient_SearchUpstreamError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, nil)

	_, err := client.Search(context.Background(), "ohm")
	assert.Error(t, err)
}

func TestClient_DisabledWhenUnconfigured(t *testing.T) {
	assert.Nil(t, NewClient(config.WebSearchConfig{Enabled: false, APIKey: "k"}))
	assert.Nil(t, NewClient(config.WebSearchConfig{Enabled: true, APIKey: "  "}))

	var c *Client
	assert.False(t, c.Enabled())
	results, err := c.Search(context.Background(), "anything")
	assert.NoError(t, err)
	assert.Nil(t, results)
}

func TestDomainAllowed(t *testing.T) {
	c := &Client{allowedDomains: []string{"wikipedia.org"}}
	assert.True(t, c.domainAllowed("https://en.wikipedia.org/wiki/Ohm"))
	assert.True(t, c.domainAllowed("https://wikipedia.org/"))
	assert.False(t, c.domainAllowed("https://notwikipedia.org/"))
	assert.False(t, c.domainAllowed("://bad-url"))
}
