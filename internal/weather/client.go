// Package weather is a minimal REST client for an OpenWeatherMap-style
// provider. It supplies the outdoor series the dashboard overlays on
// the indoor readings.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Observation is one provider-reported outdoor sample.
type Observation struct {
	TS          time.Time
	Temperature float64
	Humidity    float64
}

// Client is a minimal weather provider client.
type Client struct {
	baseURL string
	apiKey  string
	lat     float64
	lon     float64
	units   string
	client  *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.client = httpClient
		}
	}
}

// WithUnits overrides the unit system requested from the provider.
func WithUnits(units string) Option {
	return func(c *Client) {
		if units != "" {
			c.units = units
		}
	}
}

// NewClient constructs a weather client for a fixed location.
func NewClient(baseURL, apiKey string, lat, lon float64, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("weather: empty base url")
	}
	if apiKey == "" {
		return nil, errors.New("weather: empty api key")
	}
	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		lat:     lat,
		lon:     lon,
		units:   "metric",
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Current fetches the latest outdoor observation.
func (c *Client) Current(ctx context.Context) (Observation, error) {
	var resp observationResponse
	if err := c.getJSON(ctx, "/data/2.5/weather", nil, &resp); err != nil {
		return Observation{}, err
	}
	return resp.toObservation()
}

// History fetches outdoor observations within [from, to]. The provider
// returns them in ascending time order; that ordering is preserved.
func (c *Client) History(ctx context.Context, from, to time.Time) ([]Observation, error) {
	if !to.After(from) {
		return nil, errors.New("weather: to must be after from")
	}
	params := url.Values{}
	params.Set("start", fmt.Sprintf("%d", from.Unix()))
	params.Set("end", fmt.Sprintf("%d", to.Unix()))
	params.Set("type", "hour")

	var resp historyResponse
	if err := c.getJSON(ctx, "/history/city", params, &resp); err != nil {
		return nil, err
	}
	observations := make([]Observation, 0, len(resp.List))
	for _, item := range resp.List {
		obs, err := item.toObservation()
		if err != nil {
			continue
		}
		observations = append(observations, obs)
	}
	return observations, nil
}

type observationResponse struct {
	DT   int64 `json:"dt"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
}

func (r observationResponse) toObservation() (Observation, error) {
	if r.DT <= 0 {
		return Observation{}, errors.New("weather: missing observation time")
	}
	return Observation{
		TS:          time.Unix(r.DT, 0).UTC(),
		Temperature: r.Main.Temp,
		Humidity:    r.Main.Humidity,
	}, nil
}

type historyResponse struct {
	List []observationResponse `json:"list"`
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("lat", fmt.Sprintf("%g", c.lat))
	params.Set("lon", fmt.Sprintf("%g", c.lon))
	params.Set("units", c.units)
	params.Set("appid", c.apiKey)

	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("weather: %s returned %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
