package xendit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClient_CreateInvoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/invoices", r.URL.Path)

		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "sk-test", user)

		var req InvoiceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "WEBSITE_slot01_1", req.ExternalID)
		assert.Equal(t, "PHP", req.Currency)

		json.NewEncoder(w).Encode(Invoice{
			ID:         "inv-1",
			ExternalID: req.ExternalID,
			Status:     "PENDING",
			Amount:     req.Amount,
			InvoiceURL: "https://invoice.test/inv-1",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test")
	invoice, err := client.CreateInvoice(context.Background(), InvoiceRequest{
		ExternalID:      "WEBSITE_slot01_1",
		Amount:          decimal.NewFromInt(50),
		Currency:        "PHP",
		PayerEmail:      "juan@example.com",
		InvoiceDuration: 1800,
	})
	assert.NoError(t, err)
	assert.Equal(t, "inv-1", invoice.ID)
	assert.Equal(t, "https://invoice.test/inv-1", invoice.InvoiceURL)
}

func TestClient_CreateInvoice_apiError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(APIError{ErrorCode: "API_VALIDATION_ERROR", Message: "invalid payer email"})
	}))
	defer server.Close()

	client := NewClient(server.URL, "sk-test")
	_, err := client.CreateInvoice(context.Background(), InvoiceRequest{ExternalID: "x"})

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "API_VALIDATION_ERROR", apiErr.ErrorCode)
	assert.Equal(t, "invalid payer email", apiErr.Message)
}
