// Package cartgateway is a thin HTTP client for the remote cart resource:
// one authenticated cart per user, fetched, fully replaced, or deleted.
package cartgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrNoCredential means the client was built without a bearer token; no
	// request is attempted.
	ErrNoCredential = errors.New("cart gateway credential is missing")
	// ErrCartNotFound maps the gateway's 404 on fetch/delete.
	ErrCartNotFound = errors.New("cart gateway has no cart for this user")
	// ErrUnauthorized maps 401/403: the credential was rejected.
	ErrUnauthorized = errors.New("cart gateway rejected the credential")
)

// CartPayload is the wire shape of the remote cart. Metadata carries
// delivery/payment details the core passes through unmodified.
type CartPayload struct {
	BakeryID  string          `json:"bakery_id"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CartItems []ItemPayload   `json:"cartItems"`
}

// ItemPayload is one line of the remote cart. Exactly one of
// AvailableCakeID and CustomCakeID is set.
type ItemPayload struct {
	CakeName        string `json:"cake_name"`
	MainImageID     string `json:"main_image_id"`
	Quantity        int32  `json:"quantity"`
	CakeNote        string `json:"cake_note"`
	SubTotalPrice   int64  `json:"sub_total_price"`
	AvailableCakeID string `json:"available_cake_id,omitempty"`
	CustomCakeID    string `json:"custom_cake_id,omitempty"`
	BakeryID        string `json:"bakery_id"`
}

// Client calls the gateway with one session's bearer credential.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient builds a gateway client. An empty token is allowed; every call
// then fails fast with ErrNoCredential so callers can degrade to local-only.
func NewClient(baseURL, token string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("cart gateway base URL is required")
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: baseURL, token: strings.TrimSpace(token), http: httpClient}, nil
}

// FetchCart retrieves the persisted cart, or ErrCartNotFound.
func (c *Client) FetchCart(ctx context.Context) (*CartPayload, error) {
	resp, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
		var payload CartPayload
		if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
			return nil, fmt.Errorf("decode cart payload: %w", err)
		}
		return &payload, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrCartNotFound
	default:
		return nil, statusError("fetch cart", resp)
	}
}

// ReplaceCart overwrites the persisted cart wholesale.
func (c *Client) ReplaceCart(ctx context.Context, payload CartPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cart payload: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPut, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return nil
	}
	return statusError("replace cart", resp)
}

// DeleteCart removes the persisted cart. A 404 is ErrCartNotFound so callers
// can treat absence as success where that is the desired end state.
func (c *Client) DeleteCart(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return ErrCartNotFound
	default:
		return statusError("delete cart", resp)
	}
}

func (c *Client) do(ctx context.Context, method string, body []byte) (*http.Response, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("cart gateway client not configured")
	}
	if c.token == "" {
		return nil, ErrNoCredential
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/carts", reader)
	if err != nil {
		return nil, fmt.Errorf("build cart gateway request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call cart gateway: %w", err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, ErrUnauthorized
	}
	return resp, nil
}

func statusError(op string, resp *http.Response) error {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("cart gateway %s: %s", op, msg)
}
