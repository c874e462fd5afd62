package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()

	respondJSON(rec, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"key":"value"}`, rec.Body.String())
}

func TestRespondCreatedKeepsContentType(t *testing.T) {
	rec := httptest.NewRecorder()

	respondCreated(rec, map[string]string{"user_id": "U0001"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"),
		"content type must be committed before the 201 status line")
	assert.JSONEq(t, `{"user_id":"U0001"}`, rec.Body.String())
}
