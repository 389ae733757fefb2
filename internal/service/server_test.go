package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/compiler"
	"github.com/rendis/batchml/internal/export"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/internal/transport"
	"github.com/rendis/batchml/internal/validation"
	"github.com/rendis/batchml/pkg/schema"
)

const workspaceJSON = `{
	"workspace_items": [
		{"id": "Water", "type": "material", "materialType": "Input"},
		{"id": "Mix", "type": "process",
		 "otherInformation": [{"otherInfoID": "SemanticDescription",
			"otherValue": [{"valueString": "http%3A%2F%2Fexample.org%2Fcap%23Mixing"}]}]},
		{"id": "Heat", "type": "process"}
	],
	"connections": [{"id": "c1", "sourceId": "Mix", "targetId": "Heat", "isTransition": true}]
}`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	v, err := validation.New(nil)
	require.NoError(t, err)
	s, err := New(Deps{Validator: v, MaxBody: 1 << 20})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func compileXML(t *testing.T, kind compiler.Kind) []byte {
	t.Helper()
	var ws schema.Workspace
	require.NoError(t, json.Unmarshal([]byte(workspaceJSON), &ws))
	c, err := compiler.New(compiler.Options{})
	require.NoError(t, err)
	out, err := c.Compile(context.Background(), kind, &ws, nil)
	require.NoError(t, err)
	text, err := b2mml.Marshal(out.Document)
	require.NoError(t, err)
	return text
}

func decodeVerdict(t *testing.T, resp *http.Response) verdict {
	t.Helper()
	defer resp.Body.Close()
	var v verdict
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func post(t *testing.T, srv *httptest.Server, path string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+path, "application/xml", strings.NewReader(string(body)))
	require.NoError(t, err)
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "batchml_service_requests_total")
}

func TestGeneralValidate(t *testing.T) {
	srv := newServer(t)
	text := compileXML(t, compiler.KindGeneral)

	t.Run("query", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/grecipe/validate?" + url.Values{"xml_string": {string(text)}}.Encode())
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decodeVerdict(t, resp).Valid)
	})

	t.Run("body", func(t *testing.T) {
		resp := post(t, srv, "/grecipe/validate", text)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, decodeVerdict(t, resp).Valid)
	})

	t.Run("missing parameter", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/grecipe/validate")
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		v := decodeVerdict(t, resp)
		require.Len(t, v.Errors, 1)
		assert.Equal(t, schema.ErrCodeInvalidInput, v.Errors[0].Code)
	})

	t.Run("wrong root", func(t *testing.T) {
		resp := post(t, srv, "/grecipe/validate", compileXML(t, compiler.KindMaster))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		v := decodeVerdict(t, resp)
		require.Len(t, v.Errors, 1)
		assert.Contains(t, v.Errors[0].Message, "expected root element GRecipe")
	})

	t.Run("schema violation", func(t *testing.T) {
		bad := []byte(`<?xml version="1.0"?><b2mml:GRecipe xmlns:b2mml="http://www.mesa.org/xml/B2MML"><b2mml:ID>G</b2mml:ID></b2mml:GRecipe>`)
		resp := post(t, srv, "/grecipe/validate", bad)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		v := decodeVerdict(t, resp)
		assert.False(t, v.Valid)
		require.NotEmpty(t, v.Errors)
		assert.Equal(t, schema.ErrCodeSchemaViolation, v.Errors[0].Code)
	})

	t.Run("not xml", func(t *testing.T) {
		resp := post(t, srv, "/grecipe/validate", []byte("hello"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		v := decodeVerdict(t, resp)
		require.Len(t, v.Errors, 1)
		assert.Equal(t, schema.ErrCodeInvalidInput, v.Errors[0].Code)
	})
}

func TestMasterRoutes(t *testing.T) {
	srv := newServer(t)
	text := compileXML(t, compiler.KindMaster)

	resp := post(t, srv, "/mrecipe/validate", text)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decodeVerdict(t, resp).Valid)

	resp = post(t, srv, "/api/recipe/master", text)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/xml", resp.Header.Get("Content-Type"))
	echoed, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, text, echoed)
}

func TestBodyTooLarge(t *testing.T) {
	v, err := validation.New(nil)
	require.NoError(t, err)
	s, err := New(Deps{Validator: v, MaxBody: 16})
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp := post(t, srv, "/mrecipe/validate", compileXML(t, compiler.KindMaster))
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestCapabilities(t *testing.T) {
	srv := newServer(t)

	resp := post(t, srv, "/recipes/capabilities", compileXML(t, compiler.KindGeneral))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var caps []expressions.Capability
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&caps))
	assert.Equal(t, []expressions.Capability{{ID: "Mix", IRI: "http://example.org/cap#Mixing"}}, caps)

	resp = post(t, srv, "/recipes/capabilities", compileXML(t, compiler.KindMaster))
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestExportAgainstService(t *testing.T) {
	srv := newServer(t)
	tr, err := transport.NewHTTP(transport.Config{BaseURL: srv.URL})
	require.NoError(t, err)
	c, err := compiler.New(compiler.Options{})
	require.NoError(t, err)
	sink := &export.MemorySink{}
	e, err := export.New(export.Options{Compiler: c, Transport: tr, Sink: sink})
	require.NoError(t, err)

	var ws schema.Workspace
	require.NoError(t, json.Unmarshal([]byte(workspaceJSON), &ws))

	for _, tc := range []struct {
		kind compiler.Kind
		file string
	}{
		{compiler.KindGeneral, export.GeneralFile},
		{compiler.KindMaster, export.MasterFile},
	} {
		t.Run(string(tc.kind), func(t *testing.T) {
			res, err := e.Export(context.Background(), tc.kind, &ws, nil)
			require.NoError(t, err)
			assert.Equal(t, export.OutcomeValid, res.Outcome)
			assert.Equal(t, tc.file, res.Filename)
			saved, ok := sink.File(tc.file)
			require.True(t, ok)
			assert.Equal(t, res.XML, saved)
		})
	}
}
