package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dopaj/field-service/internal/config"
	"github.com/dopaj/field-service/internal/domain"
	apperrors "github.com/dopaj/field-service/pkg/util/errorutil"
)

// Locator performs the single advisory geolocation read at closure. One
// attempt, bounded by the configured timeout; the closure workflow
// proceeds without a fix when it fails.
type Locator interface {
	Locate(ctx context.Context) (*domain.GeoPoint, error)
}

type httpLocator struct {
	client   *http.Client
	endpoint string
}

// NewHTTPLocator queries a JSON position endpoint. Returns nil when no
// endpoint is configured, which disables geotagging.
func NewHTTPLocator(cfg config.GeoConfig) Locator {
	if cfg.Endpoint == "" {
		return nil
	}
	return &httpLocator{
		client:   &http.Client{Timeout: cfg.Timeout()},
		endpoint: cfg.Endpoint,
	}
}

type positionResponse struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (l *httpLocator) Locate(ctx context.Context) (*domain.GeoPoint, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return nil, apperrors.NewExternalServiceUnavailable(err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, apperrors.NewExternalServiceUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewExternalServiceUnavailable(fmt.Errorf("position endpoint returned %d", resp.StatusCode))
	}

	var pos positionResponse
	if err := json.NewDecoder(resp.Body).Decode(&pos); err != nil {
		return nil, apperrors.NewExternalServiceUnavailable(err)
	}

	return &domain.GeoPoint{
		Latitude:  pos.Latitude,
		Longitude: pos.Longitude,
		Timestamp: time.Now(),
	}, nil
}
