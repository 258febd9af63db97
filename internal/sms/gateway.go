package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Sender is the outbound SMS boundary.
type Sender interface {
	Send(ctx context.Context, mobile, code string, expireMinutes int) error
}

type gatewayResponse struct {
	Code int `json:"code"`
	Data struct {
		MessageID string `json:"messageId"`
	} `json:"data"`
}

// GatewayClient delivers verification codes through an HTTP form-POST SMS
// provider. With DryRun set (or no API key configured) it logs instead of
// calling out, which keeps local development off the paid gateway.
type GatewayClient struct {
	gatewayURL string
	apiKey     string
	sender     string
	dryRun     bool
	httpClient *http.Client
}

func NewGatewayClient(gatewayURL, apiKey, sender string, dryRun bool) *GatewayClient {
	return &GatewayClient{
		gatewayURL: gatewayURL,
		apiKey:     apiKey,
		sender:     sender,
		dryRun:     dryRun,
		httpClient: http.DefaultClient,
	}
}

func (c *GatewayClient) Send(ctx context.Context, mobile, code string, expireMinutes int) error {
	text := fmt.Sprintf("您的验证码是%s，请于%d分钟内正确输入。", code, expireMinutes)

	if c.dryRun || c.apiKey == "" {
		fmt.Printf("[sms][dry-run] to=%s text=%q\n", mobile, text)
		return nil
	}

	form := url.Values{
		"apiKey":    {c.apiKey},
		"recipient": {mobile},
		"text":      {text},
	}
	if c.sender != "" {
		form.Set("from", c.sender)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("sms: read response: %w", err)
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("sms: decode response: %w", err)
	}
	if parsed.Code != 0 {
		return fmt.Errorf("sms: gateway rejected message, code=%d", parsed.Code)
	}
	return nil
}
