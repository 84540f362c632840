package signaling

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// post sends body to url and decodes a 2xx JSON response into out. Every
// failure comes back as a *TransportError.
func post(ctx context.Context, client *http.Client, url, contentType string, body []byte, out interface{}) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return &TransportError{Endpoint: url, Err: err}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &TransportError{Endpoint: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return &TransportError{Endpoint: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if len(raw) > maxResponseBytes {
		return &TransportError{Endpoint: url, StatusCode: resp.StatusCode, Err: errors.New("response body too large")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &TransportError{
			Endpoint:   url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %q: %s", resp.Status, snippet(raw)),
		}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Endpoint: url, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// snippet returns a short single-line excerpt of a response body for errors.
func snippet(raw []byte) string {
	s := strings.Join(strings.Fields(string(raw)), " ")
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	if s == "" {
		return "(empty body)"
	}
	return s
}

// joinPath appends an endpoint path to a base URL without doubling slashes.
func joinPath(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
