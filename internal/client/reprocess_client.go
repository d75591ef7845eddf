package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ReprocessClient asks the reminder process to run its resend pass for a tenant.
type ReprocessClient struct {
	baseURL string
	client  *http.Client
}

func NewReprocessClient(baseURL string) *ReprocessClient {
	return &ReprocessClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *ReprocessClient) Reprocess(ctx context.Context, tenantID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reprocess/"+url.PathEscape(tenantID), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status code: %d body=%q", resp.StatusCode, string(body))
	}
	return nil
}
