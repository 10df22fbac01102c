package main

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/paulmach/orb/geojson"

	v1 "github.com/geowfs/wfs-gateway/api/v1"
)

// GatewayActioner performs HTTP requests against a running gateway.
type GatewayActioner struct {
	client  *http.Client
	baseURL string
	secret  []byte
}

func NewGatewayActioner(baseURL, secret string) *GatewayActioner {
	return &GatewayActioner{
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
		baseURL: baseURL,
		secret:  []byte(secret),
	}
}

// FeatureCollection is a GetFeature GeoJSON response.
type FeatureCollection struct {
	*geojson.FeatureCollection
	NumberMatched  *int
	NumberReturned int
}

func (g *GatewayActioner) StartSync() (int, error) {
	resp, err := g.do(http.MethodPost, "/api/v1/layers/sync", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

func (g *GatewayActioner) SyncStatus() (*v1.SyncStatus, error) {
	var status v1.SyncStatus
	if err := g.getJSON("/api/v1/layers/sync", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

func (g *GatewayActioner) Layer(name string) (*v1.Layer, error) {
	var layer v1.Layer
	if err := g.getJSON("/api/v1/layers/"+url.PathEscape(name), &layer); err != nil {
		return nil, err
	}
	return &layer, nil
}

func (g *GatewayActioner) CompileFilter(layer, document string) (string, error) {
	resp, err := g.do(http.MethodPost, "/api/v1/layers/"+url.PathEscape(layer)+"/filter", []byte(document))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", unexpected(resp)
	}
	var out v1.CompileResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return out.Sql, nil
}

// GetFeature returns the decoded collection, or the exception with the
// response status when the request fails.
func (g *GatewayActioner) GetFeature(params url.Values) (*FeatureCollection, *v1.Exception, int, error) {
	params.Set("SERVICE", "WFS")
	params.Set("REQUEST", "GetFeature")

	resp, err := g.do(http.MethodGet, "/wfs?"+params.Encode(), nil)
	if err != nil {
		return nil, nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, resp.StatusCode, err
	}

	if resp.StatusCode != http.StatusOK {
		var e v1.Exception
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, nil, resp.StatusCode, fmt.Errorf("decoding exception: %w", err)
		}
		return nil, &e, resp.StatusCode, nil
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		return nil, nil, resp.StatusCode, fmt.Errorf("decoding features: %w", err)
	}

	out := &FeatureCollection{FeatureCollection: fc}
	if v, ok := fc.ExtraMembers["numberReturned"].(float64); ok {
		out.NumberReturned = int(v)
	}
	if v, ok := fc.ExtraMembers["numberMatched"].(float64); ok {
		n := int(v)
		out.NumberMatched = &n
	}
	return out, nil, resp.StatusCode, nil
}

func (g *GatewayActioner) getJSON(path string, v any) error {
	resp, err := g.do(http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unexpected(resp)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func (g *GatewayActioner) do(method, path string, body []byte) (*http.Response, error) {
	req, err := http.NewRequest(method, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if len(g.secret) > 0 {
		token, err := g.token()
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	return resp, nil
}

func (g *GatewayActioner) token() (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   "e2e",
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(g.secret)
}

func unexpected(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, body)
}
