package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 15 * time.Second

// ErrBackendUnavailable covers transport failures and timeouts; the
// caller recovers into a local-only outcome rather than failing.
var ErrBackendUnavailable = errors.New("backend unavailable")

// StatusError is a non-2xx backend reply with its decoded message.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend replied %d: %s", e.Status, e.Message)
}

// Client is a typed client for the Runera backend endpoints the core
// consumes.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) RequestNonce(ctx context.Context, walletAddress string) (NonceResponse, error) {
	var resp NonceResponse
	err := c.post(ctx, "/auth/nonce", "", NonceRequest{WalletAddress: walletAddress}, &resp)
	return resp, err
}

func (c *Client) Connect(ctx context.Context, req ConnectRequest) (ConnectResponse, error) {
	var resp ConnectResponse
	err := c.post(ctx, "/auth/connect", "", req, &resp)
	return resp, err
}

func (c *Client) SubmitRun(ctx context.Context, token string, req RunSubmitRequest) (RunSubmitResponse, error) {
	var resp RunSubmitResponse
	err := c.post(ctx, "/run/submit", token, req, &resp)
	return resp, err
}

func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return resp, err
	}
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return resp, ErrBackendUnavailable
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return resp, ErrBackendUnavailable
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return resp, ErrBackendUnavailable
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, path, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return ErrBackendUnavailable
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return &StatusError{Status: httpResp.StatusCode, Message: decodeErrorMessage(httpResp)}
	}
	return json.NewDecoder(httpResp.Body).Decode(out)
}

func decodeErrorMessage(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return resp.Status
}
