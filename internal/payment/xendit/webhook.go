package xendit

import "github.com/shopspring/decimal"

// Invoice statuses delivered by the webhook.
const (
	StatusPaid    = "PAID"
	StatusExpired = "EXPIRED"
	StatusFailed  = "FAILED"
)

// WebhookEvent is the invoice callback payload. Delivery is at-least-once
// and unordered; only these four fields are consumed.
type WebhookEvent struct {
	ExternalID string          `json:"external_id"`
	Status     string          `json:"status"`
	Amount     decimal.Decimal `json:"amount"`
	ID         string          `json:"id"`
}
