package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/todo-manager/v2/internal/types"
)

const (
	requestIDHeader = "X-Request-ID"
	maxErrorBody    = 64 << 10
)

// TokenSource supplies the bearer token for authenticated calls. An empty
// token means the request goes out without an Authorization header.
type TokenSource interface {
	Token() string
}

type ApiClient struct {
	BaseURL string

	tokens TokenSource
	http   *http.Client
	log    *log.Entry
}

func NewApiClient(baseURL string, tokens TokenSource, timeout time.Duration) *ApiClient {
	return &ApiClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: timeout},
		log:     log.WithField("component", "api_client"),
	}
}

// prepareRequest creates a new HTTP request with proper headers for JSON data
func (c *ApiClient) prepareRequest(ctx context.Context, method, endpoint string, data any) (*http.Request, string, error) {
	var body io.Reader
	if data != nil {
		jsonData, err := sonic.ConfigStd.Marshal(data)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request data: %w", err)
		}
		body = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+endpoint, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	return req, requestID, nil
}

// bestEffort marks an out value whose decoding may fail without failing the
// call: any 2xx is a success and the body is read only if it parses.
type bestEffort struct {
	into any
}

// CallAPI sends data as JSON and decodes a 2xx response into out, which may
// be nil. A non-2xx response becomes an *APIError whose message is taken
// from the body's error or message key, or fallback when neither is set.
func (c *ApiClient) CallAPI(ctx context.Context, endpoint, method string, data, out any, fallback string) error {
	req, requestID, err := c.prepareRequest(ctx, method, endpoint, data)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithFields(log.Fields{
			"method":     method,
			"path":       endpoint,
			"request_id": requestID,
		}).Warnf("Request failed: %v", err)
		return fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, endpoint, err)
	}
	defer resp.Body.Close()

	c.log.WithFields(log.Fields{
		"method":     method,
		"path":       endpoint,
		"status":     resp.StatusCode,
		"request_id": requestID,
		"elapsed":    time.Since(start),
	}).Debug("API call")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body, fallback),
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if lenient, ok := out.(bestEffort); ok {
		raw, err := io.ReadAll(resp.Body)
		if err == nil && len(raw) > 0 {
			if err := sonic.ConfigStd.Unmarshal(raw, lenient.into); err != nil {
				c.log.WithField("request_id", requestID).Debugf("Ignoring unparsable body from %s %s", method, endpoint)
			}
		}
		return nil
	}
	if err := sonic.ConfigStd.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response from %s %s: %w", method, endpoint, err)
	}
	return nil
}

// errorMessage tolerates empty, non-JSON and key-less error bodies.
func errorMessage(body io.Reader, fallback string) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return fallback
	}
	var msg types.MessageResponse
	if err := sonic.ConfigStd.Unmarshal(raw, &msg); err != nil {
		return fallback
	}
	if msg.Error != "" {
		return msg.Error
	}
	if msg.Message != "" {
		return msg.Message
	}
	return fallback
}
