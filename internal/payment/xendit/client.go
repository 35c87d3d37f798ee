package xendit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

const DefaultBaseURL = "https://api.xendit.co"

// InvoiceRequest is the invoice-creation payload sent to the gateway.
type InvoiceRequest struct {
	ExternalID         string          `json:"external_id"`
	Amount             decimal.Decimal `json:"amount"`
	Currency           string          `json:"currency"`
	Description        string          `json:"description"`
	PayerEmail         string          `json:"payer_email"`
	SuccessRedirectURL string          `json:"success_redirect_url"`
	FailureRedirectURL string          `json:"failure_redirect_url"`
	InvoiceDuration    int             `json:"invoice_duration"`
}

// Invoice is the subset of the gateway's invoice object the service consumes.
type Invoice struct {
	ID         string          `json:"id"`
	ExternalID string          `json:"external_id"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	InvoiceURL string          `json:"invoice_url"`
	ExpiryDate string          `json:"expiry_date"`
}

// APIError is a rejection reported by the gateway itself, as opposed to a
// transport failure reaching it.
type APIError struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorCode
}

type Client struct {
	baseURL   string
	secretKey string
	hc        *http.Client
}

func NewClient(baseURL, secretKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:   baseURL,
		secretKey: secretKey,
		hc:        &http.Client{Timeout: 30 * time.Second},
	}
}

// CreateInvoice requests a hosted invoice from the gateway. A gateway
// rejection comes back as *APIError so callers can roll back and surface the
// gateway's own detail.
func (c *Client) CreateInvoice(ctx context.Context, inv InvoiceRequest) (*Invoice, error) {
	payload, err := json.Marshal(inv)
	if err != nil {
		return nil, fmt.Errorf("xendit: marshal invoice: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/invoices", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("xendit: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Xendit uses the secret key as the basic-auth user with an empty password.
	req.SetBasicAuth(c.secretKey, "")

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("xendit: do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("xendit: read response: %w", err)
	}

	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.ErrorCode != "" {
		return nil, &apiErr
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("xendit: unexpected status %d: %s", resp.StatusCode, body)
	}

	var invoice Invoice
	if err := json.Unmarshal(body, &invoice); err != nil {
		return nil, fmt.Errorf("xendit: decode invoice: %w", err)
	}
	return &invoice, nil
}
