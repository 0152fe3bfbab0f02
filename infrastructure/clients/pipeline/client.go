package pipeline

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"socialcast/domain/repository"
	"socialcast/infrastructure/logger"
)

// Client calls the external AI generation pipeline over its webhook. The
// pipeline answers with whatever it has ready; the finished video arrives
// later through the inbound video-ready callback.
type Client struct {
	httpClient *http.Client
	webhookURL string
	secret     string
}

func NewClient(webhookURL, secret string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		webhookURL: webhookURL,
		secret:     secret,
	}
}

func NewClientWithHTTP(client *http.Client, webhookURL, secret string) *Client {
	return &Client{httpClient: client, webhookURL: webhookURL, secret: secret}
}

func (c *Client) Generate(ctx context.Context, req *repository.GenerationRequest) (*repository.GenerationResponse, error) {
	if c.webhookURL == "" {
		return nil, fmt.Errorf("generation pipeline webhook url not configured")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.secret != "" {
		mac := hmac.New(sha256.New, []byte(c.secret))
		mac.Write(payload)
		httpReq.Header.Set("X-Signature", hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("calling generation pipeline: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("generation pipeline returned %d: %s", resp.StatusCode, string(raw))
	}

	var out repository.GenerationResponse
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			logger.GetLogger().WithField("error", err).Warn("pipeline response not json, ignoring body")
		}
	}
	return &out, nil
}
