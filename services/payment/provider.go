package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Intent is the provider's handle for an in-progress charge attempt. The
// client secret goes to the browser; the id is stored on the order.
type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// Provider abstracts the external payment service.
type Provider interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error)
}

// HTTPProvider talks to the payment provider's REST API.
type HTTPProvider struct {
	endpoint  string
	secretKey string
	client    *http.Client
}

func NewHTTPProvider(endpoint, secretKey string, timeout time.Duration) *HTTPProvider {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		endpoint:  endpoint,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

type intentResponse struct {
	Intent
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *HTTPProvider) CreateIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (*Intent, error) {
	payload := map[string]interface{}{
		"amount":   amountCents,
		"currency": currency,
		"metadata": metadata,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach payment provider: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment provider error (%d): %s", resp.StatusCode, string(raw))
	}

	var out intentResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to parse provider response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("payment provider error: %s", out.Error.Message)
	}
	if out.ID == "" || out.ClientSecret == "" {
		return nil, fmt.Errorf("payment provider returned an incomplete intent")
	}

	return &out.Intent, nil
}
