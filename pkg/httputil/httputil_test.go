package httputil

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJSONAndErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, WriteSuccess(rec, map[string]string{"name": "Engineering"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"name":"Engineering"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	WriteForbidden(rec, "not allowed")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"not allowed"}`, rec.Body.String())
}

func TestParseJSONOrError(t *testing.T) {
	var dest struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Engineering"}`))
	rec := httptest.NewRecorder()
	require.True(t, ParseJSONOrError(rec, r, &dest))
	assert.Equal(t, "Engineering", dest.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{broken`))
	rec = httptest.NewRecorder()
	assert.False(t, ParseJSONOrError(rec, r, &dest))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPathString(t *testing.T) {
	r := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/groups/Engineering", nil),
		map[string]string{"name": "Engineering"})

	val, err := PathString(r, "name")
	require.NoError(t, err)
	assert.Equal(t, "Engineering", val)

	_, err = PathString(r, "missing")
	assert.Error(t, err)
}

func TestQueryHelpers(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/audit?limit=25&actor=alice", nil)

	limit, err := QueryInt(r, "limit", 50)
	require.NoError(t, err)
	assert.Equal(t, 25, limit)

	fallback, err := QueryInt(r, "offset", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, fallback)

	_, err = QueryInt(httptest.NewRequest(http.MethodGet, "/audit?limit=x", nil), "limit", 0)
	assert.Error(t, err)

	assert.Equal(t, "alice", QueryString(r, "actor", ""))
	assert.Equal(t, "all", QueryString(r, "scope", "all"))
}
