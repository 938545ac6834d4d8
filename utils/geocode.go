package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Place is a geocoding result.
type Place struct {
	Lat       float64
	Lng       float64
	PlaceName string
}

// Geocoder resolves free-form addresses to coordinates and back. Only used
// for profile location enrichment.
type Geocoder interface {
	Forward(ctx context.Context, address string) (*Place, error)
	Reverse(ctx context.Context, lat, lng float64) (*Place, error)
}

// HTTPGeocoder talks to a Nominatim-compatible endpoint.
type HTTPGeocoder struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPGeocoder(baseURL string) *HTTPGeocoder {
	return &HTTPGeocoder{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

func (g *HTTPGeocoder) Forward(ctx context.Context, address string) (*Place, error) {
	endpoint := g.BaseURL + "/search?format=json&limit=1&q=" + url.QueryEscape(address)
	var results []nominatimResult
	if err := g.getJSON(ctx, endpoint, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no match for address")
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("bad latitude in response: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("bad longitude in response: %w", err)
	}
	return &Place{Lat: lat, Lng: lng, PlaceName: results[0].DisplayName}, nil
}

func (g *HTTPGeocoder) Reverse(ctx context.Context, lat, lng float64) (*Place, error) {
	endpoint := fmt.Sprintf("%s/reverse?format=json&lat=%f&lon=%f", g.BaseURL, lat, lng)
	var result nominatimResult
	if err := g.getJSON(ctx, endpoint, &result); err != nil {
		return nil, err
	}
	return &Place{Lat: lat, Lng: lng, PlaceName: result.DisplayName}, nil
}

func (g *HTTPGeocoder) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "konnekt-api")

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("geocoder request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("geocoder status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
