package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dopaj/field-service/internal/config"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

func TestLocateReadsPosition(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"latitude":19.4326,"longitude":-99.1332}`))
	}))
	t.Cleanup(srv.Close)

	locator := NewHTTPLocator(config.GeoConfig{Endpoint: srv.URL, TimeoutSeconds: 5})
	require.NotNil(t, locator)

	point, err := locator.Locate(context.Background())

	require.NoError(t, err)
	assert.InDelta(t, 19.4326, point.Latitude, 0.0001)
	assert.InDelta(t, -99.1332, point.Longitude, 0.0001)
	assert.False(t, point.Timestamp.IsZero())
}

func TestLocateEndpointError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	locator := NewHTTPLocator(config.GeoConfig{Endpoint: srv.URL, TimeoutSeconds: 5})

	_, err := locator.Locate(context.Background())

	assert.True(t, apperrors.IsCode(err, "EXTERNAL_SERVICE_UNAVAILABLE"))
}

func TestLocateContextTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"latitude":0,"longitude":0}`))
	}))
	t.Cleanup(srv.Close)

	locator := NewHTTPLocator(config.GeoConfig{Endpoint: srv.URL, TimeoutSeconds: 5})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := locator.Locate(ctx)

	assert.True(t, apperrors.IsCode(err, "EXTERNAL_SERVICE_UNAVAILABLE"))
}

func TestNoEndpointDisablesGeotagging(t *testing.T) {
	assert.Nil(t, NewHTTPLocator(config.GeoConfig{}))
}
