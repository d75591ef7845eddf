package client

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
	"unicode"
)

var ErrGatewayUnavailable = errors.New("gateway unavailable")

const StateOpen = "open"

// SendResult is the outcome of a send. Send failures are reported here, never as a Go error.
type SendResult struct {
	Success   bool
	MessageID string
	Error     string
}

type GatewayClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGatewayClient(baseURL, apiKey string) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// InstanceName maps a tenant to its gateway session namespace.
func InstanceName(tenantID string) string {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, tenantID)
	return "reseller_" + digits
}

type sendTextRequest struct {
	Number string `json:"number"`
	Text   string `json:"text"`
}

type sendTextResponse struct {
	Key struct {
		ID string `json:"id"`
	} `json:"key"`
}

func (c *GatewayClient) SendText(ctx context.Context, instance, number, text string) SendResult {
	reqBody, err := json.Marshal(sendTextRequest{Number: number, Text: text})
	if err != nil {
		return SendResult{Error: err.Error()}
	}

	url := c.baseURL + "/message/sendText/" + instance
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return SendResult{Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return SendResult{Error: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return SendResult{Error: fmt.Sprintf("status %d: %s", resp.StatusCode, string(body))}
	}

	var sr sendTextResponse
	// Some gateway versions answer with an empty body; the send still went through.
	_ = json.Unmarshal(body, &sr)

	return SendResult{Success: true, MessageID: sr.Key.ID}
}

type connectionStateResponse struct {
	Instance struct {
		State string `json:"state"`
	} `json:"instance"`
}

// ConnectionState returns the raw instance state, "open" when connected.
func (c *GatewayClient) ConnectionState(ctx context.Context, instance string) (string, error) {
	url := c.baseURL + "/instance/connectionState/" + instance
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d body=%q", ErrGatewayUnavailable, resp.StatusCode, string(body))
	}

	var cs connectionStateResponse
	if err := json.Unmarshal(body, &cs); err != nil {
		return "", fmt.Errorf("failed to decode json: %w body=%q", err, string(body))
	}
	return cs.Instance.State, nil
}

func (c *GatewayClient) IsConnected(ctx context.Context, instance string) (bool, error) {
	state, err := c.ConnectionState(ctx, instance)
	if err != nil {
		return false, err
	}
	return state == StateOpen, nil
}
