package client

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

	"edemy-backend/internal/config"
)

// CheckoutClient talks to the external payment collaborator. Sessions carry the
// purchase id as metadata; the provider echoes it back in webhook events.
type CheckoutClient interface {
	CreateSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSession, error)
	VerifyWebhookSignature(headers http.Header, body []byte) error
}

type CheckoutSessionParams struct {
	PurchaseID  string
	ProductName string
	AmountCents int64
	Currency    string
	SuccessURL  string
	CancelURL   string
}

type CheckoutSession struct {
	SessionID  string
	SessionURL string
}

type checkoutClientImpl struct {
	httpClient    *http.Client
	baseApiURL    string
	secretKey     string
	webhookSecret string
}

func NewCheckoutClient(cfg *config.Checkout) CheckoutClient {
	return &checkoutClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseApiURL:    cfg.BaseApiURL,
		secretKey:     cfg.SecretKey,
		webhookSecret: cfg.WebhookSecret,
	}
}

func (c *checkoutClientImpl) CreateSession(ctx context.Context, params *CheckoutSessionParams) (*CheckoutSession, error) {
	payload := map[string]interface{}{
		"mode":        "payment",
		"success_url": params.SuccessURL,
		"cancel_url":  params.CancelURL,
		"line_items": []map[string]interface{}{
			{
				"name":        params.ProductName,
				"unit_amount": params.AmountCents,
				"currency":    params.Currency,
				"quantity":    1,
			},
		},
		"metadata": map[string]string{
			"purchase_id": params.PurchaseID,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal req payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		c.baseApiURL+"/v1/checkout/sessions",
		bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("create checkout session: status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode checkout session response: %w", err)
	}

	return &CheckoutSession{
		SessionID:  result.ID,
		SessionURL: result.URL,
	}, nil
}

// VerifyWebhookSignature checks the HMAC-SHA256 signature the provider puts in
// the X-Webhook-Signature header against the raw body.
func (c *checkoutClientImpl) VerifyWebhookSignature(headers http.Header, body []byte) error {
	signature := headers.Get("X-Webhook-Signature")
	if signature == "" {
		return fmt.Errorf("missing webhook signature header")
	}

	mac := hmac.New(sha256.New, []byte(c.webhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return fmt.Errorf("webhook signature mismatch")
	}

	return nil
}
