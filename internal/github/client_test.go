package github

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cli/go-gh/v2/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := newClient(api.ClientOptions{
		AuthToken: "test-token",
		Host:      "github.com",
		Transport: http.DefaultTransport,
	}, server.URL)
	require.NoError(t, err)
	return client
}

func TestFetchFile(t *testing.T) {
	body := "pool:\n  english: [it]\n"
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/style/contents/keyfit-style.yaml", r.URL.Path)
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		w.Header().Set("ETag", `"v1"`)
		_, _ = w.Write([]byte(`{"type":"file","encoding":"base64","sha":"abc","content":"` +
			base64.StdEncoding.EncodeToString([]byte(body)) + `"}`))
	})

	result, err := client.FetchFile(context.Background(), "acme", "style", "keyfit-style.yaml", "main", "")
	require.NoError(t, err)
	assert.Equal(t, body, result.Content)
	assert.Equal(t, "abc", result.SHA)
	assert.Equal(t, `"v1"`, result.ETag)
	assert.False(t, result.NotModified)
}

func TestFetchFile_NotModified(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `"v1"`, r.Header.Get("If-None-Match"))
		w.WriteHeader(http.StatusNotModified)
	})

	result, err := client.FetchFile(context.Background(), "acme", "style", "keyfit-style.yaml", "", `"v1"`)
	require.NoError(t, err)
	assert.True(t, result.NotModified)
	assert.Equal(t, `"v1"`, result.ETag)
}

func TestFetchFile_NotFound(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	_, err := client.FetchFile(context.Background(), "acme", "style", "keyfit-style.yaml", "", "")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestFetchFile_RequiresArguments(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.FetchFile(context.Background(), "", "style", "keyfit-style.yaml", "", "")
	assert.Error(t, err)
}

func TestSearchStyles(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search/repositories", r.URL.Path)
		assert.Equal(t, "topic:keyfit-style blog", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"total_count":1,"items":[{"name":"style","description":"Korean blog style",
			"stargazers_count":7,"topics":["keyfit-style","korean"],"html_url":"https://github.com/acme/style",
			"owner":{"login":"acme"}}]}`))
	})

	results, err := client.SearchStyles(context.Background(), "blog")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "acme/style", results[0].FullName())
	assert.Equal(t, 7, results[0].Stars)
}
