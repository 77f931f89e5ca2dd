package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/hazard-risk-service/internal/adapter/http"
	"github.com/couchcryptid/hazard-risk-service/internal/domain"
	"github.com/couchcryptid/hazard-risk-service/internal/model"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type staticCatalog []model.Info

func (c staticCatalog) Models() []model.Info { return c }

func newTestServer(readyErr error) *httpadapter.Server {
	catalog := staticCatalog{
		{Hazard: domain.HazardEarthquake, Kind: model.GradientBoosting, Trained: true, Samples: 500},
		{Hazard: domain.HazardFlood, Kind: model.GradientBoosting},
	}
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, catalog, slog.Default())
}

func get(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(nil), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(nil), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(fmt.Errorf("models not trained: flood")), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "models not trained: flood", body["error"])
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestModelsEndpoint(t *testing.T) {
	rec := get(newTestServer(nil), "/models")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Models []model.Info `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Models, 2)
	assert.Equal(t, domain.HazardEarthquake, body.Models[0].Hazard)
	assert.True(t, body.Models[0].Trained)
	assert.False(t, body.Models[1].Trained)
}

func TestAllReady(t *testing.T) {
	ok := &mockReadiness{}
	pending := &mockReadiness{err: errors.New("pipeline has not processed any requests yet")}
	untrained := &mockReadiness{err: errors.New("models not trained: tsunami")}

	assert.NoError(t, httpadapter.AllReady(ok, ok).CheckReadiness(context.Background()))

	err := httpadapter.AllReady(ok, pending, untrained).CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline has not processed")
	assert.Contains(t, err.Error(), "tsunami")
}
