package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/batchml/pkg/schema"
)

func TestNewHTTP_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "not a url", "ftp://host/x"} {
		_, err := NewHTTP(Config{BaseURL: raw})
		assert.Equal(t, schema.ErrCodeInvalidInput, schema.ErrorCode(err), raw)
	}
}

func TestHTTP_Get(t *testing.T) {
	var gotPath, gotXML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotXML = r.URL.Query().Get("xml_string")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"valid":false}`)
	}))
	defer srv.Close()

	tr, err := NewHTTP(Config{BaseURL: srv.URL + "/api/"})
	require.NoError(t, err)

	resp, err := tr.Get(context.Background(), "/grecipe/validate", url.Values{"xml_string": {"<a>&</a>"}})
	require.NoError(t, err)
	assert.Equal(t, "/api/grecipe/validate", gotPath)
	assert.Equal(t, "<a>&</a>", gotXML)
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.False(t, resp.Success())
	assert.Equal(t, "application/json", resp.ContentType)
	assert.JSONEq(t, `{"valid":false}`, string(resp.Data))
}

func TestHTTP_Post(t *testing.T) {
	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		_, _ = io.WriteString(w, "<?xml version=\"1.0\"?><ok/>")
	}))
	defer srv.Close()

	tr, err := NewHTTP(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	resp, err := tr.Post(context.Background(), "api/recipe/master", "application/xml", []byte("<BatchInformation/>"))
	require.NoError(t, err)
	assert.True(t, resp.Success())
	assert.Equal(t, "<BatchInformation/>", gotBody)
	assert.Equal(t, "application/xml", gotType)
	assert.Contains(t, string(resp.Data), "<ok/>")
}

func TestHTTP_LimitsResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "0123456789")
	}))
	defer srv.Close()

	tr, err := NewHTTP(Config{BaseURL: srv.URL, MaxResponseBody: 4})
	require.NoError(t, err)
	resp, err := tr.Get(context.Background(), "/", nil)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(resp.Data))
}

func TestHTTP_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	tr, err := NewHTTP(Config{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)
	_, err = tr.Get(context.Background(), "/grecipe/validate", nil)
	assert.Error(t, err)
}
