package ratefeed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// contains http utils to deal with remote sources

// Some of the sources serve a different (or empty) document to clients that
// do not look like a browser.
const userAgent = "Mozilla/5.0"

// Client returns an http client bounded by the given timeout, so a stalled
// source surfaces as a fetch error instead of hanging a scheduler loop.
func Client(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{Timeout: timeout}
}

// Get performs an HTTP GET and returns the raw body. Extra headers are set
// on top of the default User-Agent. Non-200 statuses are errors.
func Get(ctx context.Context, client *http.Client, addr string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v/%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GetJSON performs an HTTP GET and unmarshals the JSON response into the
// provided data structure.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	body, err := Get(ctx, client, addr, nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}
