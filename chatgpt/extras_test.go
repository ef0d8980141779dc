package chatgpt

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serviceOpts(srv *httptest.Server) []ServiceOption {
	return []ServiceOption{
		WithServiceBaseURL(srv.URL),
		WithServiceHTTPClient(srv.Client()),
	}
}

func TestAvailableModels_RawBody(t *testing.T) {
	listing := `{"data":[{"id":"gpt-4o-mini","owned_by":"system"},{"id":"gpt-4o","owned_by":"system"}]}`
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(listing))
	}))
	defer srv.Close()

	raw, err := AvailableModels(context.Background(), "test-key", serviceOpts(srv)...)
	require.NoError(t, err)
	assert.Equal(t, listing, string(raw))
	assert.Equal(t, "/v1/models", gotPath)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestIsModelAvailable_SubstringCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"gpt-4o-mini"}]}`))
	}))
	defer srv.Close()

	ok, err := IsModelAvailable(context.Background(), "test-key", "gpt-4o-mini", serviceOpts(srv)...)
	require.NoError(t, err)
	assert.True(t, ok)

	// Containment, not exact id match.
	ok, err = IsModelAvailable(context.Background(), "test-key", "gpt-4o", serviceOpts(srv)...)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsModelAvailable(context.Background(), "test-key", "claude-3", serviceOpts(srv)...)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsModelAvailable(context.Background(), "test-key", "", serviceOpts(srv)...)
	ce, asOK := AsError(err)
	require.True(t, asOK)
	assert.Equal(t, CodeInvalidArgument, ce.Code)
}

func TestGenerateImage_Success(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"data":[{"url":"https://img.example.test/cat.png"}]}`))
	}))
	defer srv.Close()

	url, err := GenerateImage(context.Background(), "test-key", "a cat", "512x512", serviceOpts(srv)...)
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.test/cat.png", url)

	assert.Equal(t, "a cat", gotBody["prompt"])
	assert.Equal(t, float64(1), gotBody["n"])
	assert.Equal(t, "512x512", gotBody["size"])
}

func TestGenerateImage_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode ErrorCode
	}{
		{"structured api error", http.StatusOK, `{"error":{"message":"billing hard limit"}}`, CodeAPI},
		{"empty data", http.StatusOK, `{"data":[]}`, CodeJSONParse},
		{"missing url", http.StatusOK, `{"data":[{}]}`, CodeJSONParse},
		{"bad gateway text", http.StatusBadGateway, `upstream timeout`, CodeHTTP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := GenerateImage(context.Background(), "test-key", "a cat", "512x512", serviceOpts(srv)...)
			ce, ok := AsError(err)
			require.True(t, ok)
			assert.Equal(t, tt.wantCode, ce.Code)
		})
	}

	_, err := GenerateImage(context.Background(), "test-key", "", "512x512")
	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidArgument, ce.Code)
}

func TestQuery_RequiresKey(t *testing.T) {
	SetDefaultAPIKey("")
	_, err := Query(context.Background(), "", "hello")
	require.Error(t, err)
}

func TestServiceEndpoints_FallbackKey(t *testing.T) {
	SetDefaultAPIKey("ambient-key")
	defer SetDefaultAPIKey("")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	_, err := AvailableModels(context.Background(), "", serviceOpts(srv)...)
	require.NoError(t, err)
	assert.Equal(t, "Bearer ambient-key", gotAuth)

	SetDefaultAPIKey("")
	_, err = AvailableModels(context.Background(), "", serviceOpts(srv)...)
	ce, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidArgument, ce.Code)
}
