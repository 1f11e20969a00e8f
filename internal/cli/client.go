package cli

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const (
	defaultServerURL = "http://127.0.0.1:39393"
	httpTimeout      = 5 * time.Second
)

// apiClient talks to a running revisio server.
type apiClient struct {
	http      *http.Client
	serverURL string
}

// newAPIClient respects the REVISIO_URL env var and falls back to the
// default local address.
func newAPIClient() *apiClient {
	url := os.Getenv("REVISIO_URL")
	if url == "" {
		url = defaultServerURL
	}
	return &apiClient{
		http:      &http.Client{Timeout: httpTimeout},
		serverURL: url,
	}
}

// post sends a POST request with a JSON body and returns the response body.
func (c *apiClient) post(path string, body []byte) ([]byte, error) {
	resp, err := c.http.Post(c.serverURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("POST %s: status %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

// get sends a GET request and returns the response body.
func (c *apiClient) get(path string) ([]byte, error) {
	resp, err := c.http.Get(c.serverURL + path)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response %s: %w", path, err)
	}
	if resp.StatusCode >= 400 {
		return data, fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, data)
	}
	return data, nil
}

// healthy checks whether the server is reachable.
func (c *apiClient) healthy() bool {
	resp, err := c.http.Get(c.serverURL + "/api/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
