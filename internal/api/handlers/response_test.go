package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Aiko"}`))
	require.NoError(t, DecodeJSON(r, &dst))
	assert.Equal(t, "Aiko", dst.Name)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Aiko","extra":1}`))
	assert.Error(t, DecodeJSON(r, &dst))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	assert.Error(t, DecodeJSON(r, &dst))
}

func TestRespondErrorCode(t *testing.T) {
	w := httptest.NewRecorder()

	RespondErrorCode(w, http.StatusConflict, "QuotaExceeded", "лимит исчерпан")

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{Code: "QuotaExceeded", Message: "лимит исчерпан"}, body)
}

func TestRespondError_CodeFromStatus(t *testing.T) {
	tests := []struct {
		respond func(w http.ResponseWriter)
		status  int
		code    string
	}{
		{func(w http.ResponseWriter) { RespondBadRequest(w, "x") }, http.StatusBadRequest, CodeBadRequest},
		{func(w http.ResponseWriter) { RespondUnauthorized(w, "x") }, http.StatusUnauthorized, CodeUnauthorized},
		{func(w http.ResponseWriter) { RespondForbidden(w, "x") }, http.StatusForbidden, CodeForbidden},
		{func(w http.ResponseWriter) { RespondNotFound(w, "x") }, http.StatusNotFound, CodeNotFound},
		{func(w http.ResponseWriter) { RespondInternalError(w) }, http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		w := httptest.NewRecorder()
		tt.respond(w)

		var body ErrorResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
		assert.Equal(t, tt.status, w.Code)
		assert.Equal(t, tt.code, body.Code)
	}
}
