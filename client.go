// Package setto provides the Setto Server SDK for partner server integration.
//
// The SDK talks to the Setto Wallet server over its REST API. Partner servers use
// it to manage merchants, check user verification, exchange account link tokens
// and check payment status.
//
// Quick start:
//
//	client, err := setto.NewClient(setto.Config{
//	    APIKey:      "sk_partner.xxx",
//	    Environment: setto.Production,
//	})
//
//	merchant, err := client.CreateMerchant(ctx, &setto.CreateMerchantRequest{...})
//
// Every failed call returns one of *SystemError, *PaymentError,
// *ValidationError, *HTTPError or *NetworkError, or an error matching
// ErrInvalidArgument when the request was rejected locally.
package setto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

const (
	opCreateMerchant           = "create_merchant"
	opGetMerchant              = "get_merchant"
	opUpdateMerchant           = "update_merchant"
	opUpdateMerchantProfile    = "update_merchant_profile"
	opGetVerificationStatus    = "get_verification_status"
	opExchangeAccountLinkToken = "exchange_account_link_token"
	opGetPaymentStatus         = "get_payment_status"
)

// RequestIDHeader carries the per-call request ID.
const RequestIDHeader = "X-Request-ID"

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 4 << 20

// Client is the Setto Wallet SDK client. It is safe for concurrent use and
// holds no state besides its resolved configuration.
type Client struct {
	cfg *ResolvedConfig
}

// NewClient validates cfg and creates a client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	resolved, err := Resolve(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return NewClientFromConfig(resolved), nil
}

// NewClientFromConfig creates a client from an already resolved configuration.
func NewClientFromConfig(cfg *ResolvedConfig) *Client {
	return &Client{cfg: cfg}
}

// Config returns the client's resolved configuration.
func (c *Client) Config() *ResolvedConfig {
	return c.cfg
}

type requestIDKey struct{}

// WithRequestID makes calls using ctx send id as their request ID instead of a
// generated one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func pathSegment(s string) string {
	return url.PathEscape(s)
}

// do executes one request/response round trip. A nil body sends no payload; a
// nil result discards the response body.
func (c *Client) do(ctx context.Context, op, method, path string, body any, result any) (err error) {
	started := time.Now()
	requestID := requestIDFrom(ctx)
	defer func() {
		c.cfg.metrics.observe(op, started, err)
		if err != nil {
			c.cfg.logger.Warn(fmt.Sprintf("%s %s failed: request_id=%s kind=%s: %v",
				method, path, requestID, KindOf(err), err), logCategory)
		}
	}()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("setto: failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.endpoint(path), bodyReader)
	if err != nil {
		return &NetworkError{Cause: err}
	}

	req.Header.Set("X-API-Key", c.cfg.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.userAgent)
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.cfg.logger.Debug(fmt.Sprintf("%s %s request_id=%s key=%s",
		method, path, requestID, c.cfg.KeyFingerprint()), logCategory)

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return &NetworkError{Cause: fmt.Errorf("read response: %w", err)}
	}
	if len(respBody) > maxResponseBytes {
		return &HTTPError{Status: resp.StatusCode, Body: fmt.Sprintf("response body exceeds %d bytes", maxResponseBytes)}
	}

	c.cfg.logger.Debug(fmt.Sprintf("%s %s request_id=%s: HTTP %d (%s)",
		method, path, requestID, resp.StatusCode, time.Since(started).Round(time.Millisecond)), logCategory)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyResponse(resp.StatusCode, respBody)
	}

	// Gateway handlers may answer 200 with an embedded error code.
	if embedded := structuredError(resp.StatusCode, respBody); embedded != nil {
		return embedded
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return &HTTPError{Status: resp.StatusCode, Body: string(respBody)}
		}
	}

	return nil
}
