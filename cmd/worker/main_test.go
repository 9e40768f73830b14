package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/felixgeelhaar/studybuddy/internal/app/apptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler(t *testing.T) {
	c := apptest.NewContainer(t)
	h := healthHandler(c)

	tests := []struct {
		path   string
		status int
		field  string
		want   any
	}{
		{path: "/healthz", status: http.StatusOK, field: "status", want: "ok"},
		{path: "/readyz", status: http.StatusOK, field: "status", want: "ready"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body map[string]any
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body[tt.field])
		})
	}
}

func TestHealthHandler_NotReadyAfterClose(t *testing.T) {
	c := apptest.NewContainer(t)
	conn := c.DBConn
	require.NoError(t, conn.Close())

	rec := httptest.NewRecorder()
	healthHandler(c).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
