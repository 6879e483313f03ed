package unifiedllm

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

// httpClient is a shared HTTP client wrapper with configurable timeouts.
type httpClient struct {
	client *http.Client
}

// newHTTPClient creates an HTTP client with default timeouts.
func newHTTPClient() *httpClient {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 10 * time.Second, // connect timeout
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 120 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
	}
	return &httpClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   120 * time.Second, // request timeout
		},
	}
}

// parseRetryAfter parses a Retry-After header value.
// Supports both seconds (integer) and HTTP-date formats.
func parseRetryAfter(value string) *float64 {
	if value == "" {
		return nil
	}

	if seconds, err := strconv.ParseFloat(value, 64); err == nil {
		return &seconds
	}

	for _, layout := range []string{time.RFC1123, time.RFC850} {
		if t, err := time.Parse(layout, value); err == nil {
			seconds := time.Until(t).Seconds()
			if seconds < 0 {
				seconds = 0
			}
			return &seconds
		}
	}

	return nil
}

// buildErrorFromResponse creates a ProviderError from a non-200 response.
// It understands the common {"error":{"message","code","type"}} envelope
// and the flat {"message": ...} shape; anything else is reported verbatim.
func buildErrorFromResponse(resp *http.Response, providerName string) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return &NetworkError{SDKError: SDKError{
			Message: fmt.Sprintf("failed to read error response body: %v", err),
			Cause:   err,
		}}
	}

	var message, code string
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		message = parsed.Get("error.message").String()
		code = parsed.Get("error.code").String()
		if code == "" {
			code = parsed.Get("error.type").String()
		}
		if message == "" {
			message = parsed.Get("message").String()
		}
	}
	if message == "" {
		message = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))
	}

	return &ProviderError{
		SDKError:   SDKError{Message: message},
		Provider:   providerName,
		StatusCode: resp.StatusCode,
		Code:       code,
		RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
	}
}
