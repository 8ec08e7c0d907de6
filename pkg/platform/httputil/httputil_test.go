package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/estdev3690/digital-e-gram-panchayat/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	decode := func(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
		t.Helper()
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	t.Run("coded error maps to its status and envelope", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.New(dErrors.CodeNotFound, "Application not found"))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "not_found", body["error"])
		assert.Equal(t, "Application not found", body["error_description"])
	})

	t.Run("internal errors hide their description", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "store failure"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		body := decode(t, rec)
		assert.Equal(t, "internal_error", body["error"])
		assert.Empty(t, body["error_description"])
	})

	t.Run("uncoded errors are treated as internal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		WriteError(rec, errors.New("boom"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code dErrors.Code
		want int
	}{
		{dErrors.CodeValidation, http.StatusBadRequest},
		{dErrors.CodeUnauthorized, http.StatusUnauthorized},
		{dErrors.CodeForbidden, http.StatusForbidden},
		{dErrors.CodeConflict, http.StatusConflict},
		{dErrors.CodeTimeout, http.StatusGatewayTimeout},
		{dErrors.Code("mystery"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ToHTTPStatus(tc.code), "code %s", tc.code)
	}
}
