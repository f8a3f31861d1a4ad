package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"subscription-billing/internal/domain/ports/adapter"
)

var _ adapter.GatewayClient = (*HTTPGateway)(nil)

// HTTPGateway talks to the payment provider's charge API over HTTP. The
// provider confirms (or fails) charges later through webhooks; this client
// only creates them.
type HTTPGateway struct {
	name    string
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(name, baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *HTTPGateway) Name() string { return g.name }

type createChargeResponse struct {
	Data struct {
		TxID           string    `json:"txid"`
		PayCode        string    `json:"pay_code"`
		PayCodeURL     string    `json:"pay_code_url"`
		ExpirationDate time.Time `json:"expiration_date"`
	} `json:"data"`
	Errors []interface{} `json:"errors"`
}

// CreatePayCode requests an instant-transfer charge from the provider.
func (g *HTTPGateway) CreatePayCode(ctx context.Context, paymentID string, amount int64, currency string, expiresIn time.Duration) (*adapter.PayCode, error) {
	requestData := map[string]interface{}{
		"reference_id":       paymentID,
		"amount":             amount,
		"currency":           currency,
		"expiration_seconds": int(expiresIn.Seconds()),
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request data: %w", err)
	}

	url := g.baseURL + "/v1/charges"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway error: status %d, body: %s", resp.StatusCode, string(body))
	}

	var response createChargeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
	}

	if len(response.Errors) > 0 {
		errorBytes, _ := json.Marshal(response.Errors)
		return nil, fmt.Errorf("gateway errors: %s", string(errorBytes))
	}
	if response.Data.TxID == "" || response.Data.PayCode == "" {
		return nil, fmt.Errorf("gateway returned incomplete charge: %s", string(body))
	}

	return &adapter.PayCode{
		TxID:           response.Data.TxID,
		Code:           response.Data.PayCode,
		CodeURL:        response.Data.PayCodeURL,
		ExpirationDate: response.Data.ExpirationDate,
	}, nil
}
