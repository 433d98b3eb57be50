package response

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONWritesBody(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, Health{Status: "ok", ProgramID: "battle"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"status":"ok","program_id":"battle"}`, rr.Body.String())
}

func TestJSONUnencodableValue(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NotEqual(t, "application/json", rr.Header().Get("Content-Type"))
}

func TestCreatedAndNoContent(t *testing.T) {
	rr := httptest.NewRecorder()
	Created(rr, Event{Kind: "registered"})
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = httptest.NewRecorder()
	NoContent(rr)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}
