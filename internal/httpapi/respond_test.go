package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beadhub/beadhub/internal/apperr"
)

func TestWriteJSONSetsContentTypeAndBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]string{"id": "bd-1"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "bd-1", body["id"])
}

func TestWriteJSONNilBodyWritesNoContent(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusNoContent, nil)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestWriteErrorMapsTypedCodesToStatuses(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{apperr.ValidationError("bad"), http.StatusBadRequest},
		{apperr.Unauthenticatedf("no creds"), http.StatusUnauthorized},
		{apperr.Forbiddenf("nope"), http.StatusForbidden},
		{apperr.NotFoundf("missing"), http.StatusNotFound},
		{apperr.Conflictf("taken"), http.StatusConflict},
		{apperr.PreconditionFailedf("stale"), http.StatusPreconditionFailed},
		{apperr.Unavailablef("down"), http.StatusServiceUnavailable},
		{apperr.Internalf(errors.New("boom"), "failed"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
		writeError(rec, req, tc.err)
		assert.Equal(t, tc.wantStatus, rec.Code)
	}
}

func TestWriteErrorUntypedErrorIsInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
	writeError(rec, req, errors.New("whatever went wrong"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, apperr.Internal, body.Code)
	assert.NotContains(t, body.Detail, "whatever went wrong")
}

func TestWriteErrorCarriesFields(t *testing.T) {
	err := apperr.Conflictf("bead %q already claimed", "bd-1").WithFields(map[string]any{
		"claimants": []map[string]string{{"alias": "alice"}},
	})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/test", nil)
	writeError(rec, req, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "conflict", body["code"])
	claimants, ok := body["fields"].(map[string]any)["claimants"].([]any)
	require.True(t, ok)
	assert.Equal(t, "alice", claimants[0].(map[string]any)["alias"])
}

func TestDecodeJSONRejectsMalformedBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/v1/test", strings.NewReader(`{"bad":`))
	var v map[string]any
	err := decodeJSON(req, &v)
	require.Error(t, err)
	assert.Equal(t, apperr.Validation, apperr.CodeOf(err))
}

func TestCursorRoundTrip(t *testing.T) {
	c := cursor{SortKey: "2026-07-31T00:00:00Z", ID: "bd-42"}
	encoded := encodeCursor(c)

	decoded, ok := decodeCursor(encoded)
	require.True(t, ok)
	assert.Equal(t, c, decoded)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	_, ok := decodeCursor("not-valid-base64!!!")
	assert.False(t, ok)
}

func TestParseLimitDefaultsAndClamps(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 50},
		{"limit=10", 10},
		{"limit=0", 50},
		{"limit=-5", 50},
		{"limit=abc", 50},
		{"limit=10000", 500},
	}
	for _, tc := range cases {
		u := "/v1/beads?" + tc.query
		req := httptest.NewRequest(http.MethodGet, u, nil)
		assert.Equal(t, tc.want, parseLimit(req), "query=%q", tc.query)
	}
}

func TestParseLimitIgnoresUnrelatedQueryParams(t *testing.T) {
	v := url.Values{}
	v.Set("status", "open")
	req := httptest.NewRequest(http.MethodGet, "/v1/beads?"+v.Encode(), nil)
	assert.Equal(t, 50, parseLimit(req))
}
