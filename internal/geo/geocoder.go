package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNoAddress indicates the geocoder had no address for the coordinates.
var ErrNoAddress = errors.New("no address for coordinates")

// Geocoder resolves coordinates to a human-readable address.
type Geocoder interface {
	AddressFor(ctx context.Context, p Point) (string, error)
}

// ResolveAddress is best-effort: any failure, or a nil geocoder, yields the
// formatted coordinates instead of an error.
func ResolveAddress(ctx context.Context, g Geocoder, p Point) string {
	if g == nil {
		return FormatCoordinates(p)
	}
	addr, err := g.AddressFor(ctx, p)
	if err != nil || addr == "" {
		return FormatCoordinates(p)
	}
	return addr
}

// NominatimGeocoder calls a Nominatim-compatible /reverse endpoint.
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	timeout   time.Duration
	http      *http.Client
}

func NewNominatimGeocoder(baseURL string, timeout time.Duration) *NominatimGeocoder {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &NominatimGeocoder{
		baseURL:   baseURL,
		userAgent: "shiftlog",
		timeout:   timeout,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 2 * time.Second}).DialContext,
			},
		},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

func (g *NominatimGeocoder) AddressFor(ctx context.Context, p Point) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lng, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocoding: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var out reverseResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if out.Error != "" || out.DisplayName == "" {
		return "", ErrNoAddress
	}
	return out.DisplayName, nil
}
