package unifiedllm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// httpClient is a shared HTTP client wrapper. It sets connect and header
// timeouts only; overall call deadlines come from the caller's context.
type httpClient struct {
	client *http.Client
}

// newHTTPClient creates an HTTP client with default transport timeouts.
func newHTTPClient() *httpClient {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second, // connect timeout
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &httpClient{client: &http.Client{Transport: transport}}
}

// postJSON sends body to rawURL and returns the response body of a 2xx reply.
// Any other status is converted with buildErrorFromResponse.
func (hc *httpClient) postJSON(ctx context.Context, provider, rawURL string, headers map[string]string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "failed to create request", Cause: err}}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &RequestTimeoutError{SDKError: SDKError{Message: "request timed out", Cause: err}}
		}
		return nil, &NetworkError{SDKError: SDKError{Message: "request failed", Cause: err}}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, buildErrorFromResponse(resp, provider)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{SDKError: SDKError{Message: "failed to read response body", Cause: err}}
	}
	return data, nil
}

// joinURL appends path segments to base without doubling slashes.
func joinURL(base string, elem ...string) string {
	out := strings.TrimRight(base, "/")
	for _, e := range elem {
		out += "/" + strings.TrimLeft(e, "/")
	}
	return out
}

// withQuery adds params to rawURL, keeping any query it already has.
func withQuery(rawURL string, params map[string]string) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// buildErrorFromResponse creates an appropriate error from an HTTP response.
func buildErrorFromResponse(resp *http.Response, providerName string) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{SDKError: SDKError{
			Message: fmt.Sprintf("failed to read error response body: %v", err),
			Cause:   err,
		}}
	}
	return errorFromBody(resp.StatusCode, body, providerName)
}

// errorFromBody maps a non-2xx status and its body to a typed error.
func errorFromBody(statusCode int, body []byte, providerName string) error {
	var raw map[string]interface{}
	var message, errorCode string

	if err := json.Unmarshal(body, &raw); err == nil {
		// OpenAI/Azure/Gemini all nest {"error": {"message": ...}}.
		if errObj, ok := raw["error"].(map[string]interface{}); ok {
			if msg, ok := errObj["message"].(string); ok {
				message = msg
			}
			if code, ok := errObj["code"].(string); ok {
				errorCode = code
			}
			if code, ok := errObj["type"].(string); ok && errorCode == "" {
				errorCode = code
			}
			if status, ok := errObj["status"].(string); ok && errorCode == "" {
				errorCode = status
			}
		}
		if message == "" {
			if msg, ok := raw["message"].(string); ok {
				message = msg
			}
		}
	}

	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", statusCode, string(body))
	}

	return ErrorFromStatusCode(statusCode, message, providerName, errorCode, raw)
}
