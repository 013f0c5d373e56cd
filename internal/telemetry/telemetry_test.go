package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/budgetbolt/backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupNone(t *testing.T) {
	shutdown, err := Setup(context.Background(), config.TracingNone)
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestSetupUnknownMode(t *testing.T) {
	_, err := Setup(context.Background(), "zipkin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zipkin")
}

func TestHandlerPassesThrough(t *testing.T) {
	h := Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestTracerStartsSpans(t *testing.T) {
	ctx, span := Tracer().Start(context.Background(), "test")
	defer span.End()
	assert.NotNil(t, ctx)
}
