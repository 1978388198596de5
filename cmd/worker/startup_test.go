package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadyHandler(t *testing.T) {
	healthy := []namedCheck{{"redis", func(context.Context) error { return nil }}}
	down := []namedCheck{
		{"redis", func(context.Context) error { return nil }},
		{"storage", func(context.Context) error { return errors.New("minio unreachable") }},
	}

	w := httptest.NewRecorder()
	readyHandler(healthy)(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "READY")

	w = httptest.NewRecorder()
	readyHandler(down)(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "storage check failed")
}
