// internal/platform/httpx/httpx_test.go
package httpx

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phstore/internal/platform/apperr"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]int{"count": 3})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body["count"])
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, apperr.New(apperr.KindInsufficientStock, "not enough stock available"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not enough stock available", body["error"])
	assert.Equal(t, "insufficient_stock", body["kind"])
}

func TestRespondErrorMasksInternalCauses(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, apperr.Internal(errors.New("pq: relation does not exist")))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation does not exist")
	assert.Contains(t, rec.Body.String(), "internal error")
}
