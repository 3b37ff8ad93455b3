package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"tbs/src/config"
	"tbs/src/types"

	"github.com/tidwall/gjson"
)

type FlutterwaveClient struct {
	BaseURL   string
	SecretKey string
	HTTP      *http.Client
}

func NewFlutterwaveClient() *FlutterwaveClient {
	return &FlutterwaveClient{
		BaseURL:   config.FlutterwaveBaseURL,
		SecretKey: os.Getenv("FLW_SECRET_KEY"),
		HTTP:      providerHTTPClient,
	}
}

func (c *FlutterwaveClient) Name() string {
	return types.PROVIDER_FLUTTERWAVE
}

func (c *FlutterwaveClient) do(req *http.Request, op string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.SecretKey)
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Op: op, Network: true, Err: err}
	}
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Op: op, Network: true, Err: err}
	}
	if res.StatusCode >= http.StatusInternalServerError {
		return nil, &ProviderError{Provider: c.Name(), Op: op, Network: true, Err: fmt.Errorf("unexpected status %d", res.StatusCode)}
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, &ProviderError{Provider: c.Name(), Op: op, Network: false, Err: fmt.Errorf("request rejected with status %d: %s", res.StatusCode, string(body))}
	}
	return body, nil
}

// InitiatePayment opens a hosted payment link. Flutterwave only assigns its
// own transaction id after the charge, so the merchant reference (tx_ref)
// doubles as the tracking id for later verification.
func (c *FlutterwaveClient) InitiatePayment(ctx context.Context, params *InitiatePaymentParams) (*InitiatedPayment, error) {
	payload, _ := json.Marshal(map[string]any{
		"tx_ref":       params.MerchantReference,
		"amount":       fmt.Sprintf("%.2f", params.Amount),
		"currency":     params.Currency,
		"redirect_url": params.CallbackURL,
		"customer": map[string]string{
			"email":       params.CustomerEmail,
			"phonenumber": params.CustomerPhone,
			"name":        params.CustomerName,
		},
		"customizations": map[string]string{
			"title":       "Travel booking",
			"description": params.Description,
		},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/payments", bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Op: "CreatePayment", Network: false, Err: err}
	}
	body, err := c.do(req, "CreatePayment")
	if err != nil {
		return nil, err
	}
	if gjson.GetBytes(body, "status").String() != "success" {
		return nil, &ProviderError{Provider: c.Name(), Op: "CreatePayment", Network: false, Err: fmt.Errorf("payment rejected: %s", gjson.GetBytes(body, "message").String())}
	}
	link := gjson.GetBytes(body, "data.link").String()
	if link == "" {
		return nil, &ProviderError{Provider: c.Name(), Op: "CreatePayment", Network: false, Err: fmt.Errorf("incomplete response: %s", string(body))}
	}
	return &InitiatedPayment{TrackingID: params.MerchantReference, RedirectURL: link}, nil
}

func (c *FlutterwaveClient) VerifyPayment(ctx context.Context, trackingId string) (*VerifiedPayment, error) {
	endpoint := fmt.Sprintf("%s/transactions/verify_by_reference?tx_ref=%s", c.BaseURL, url.QueryEscape(trackingId))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Op: "VerifyTransaction", Network: false, Err: err}
	}
	body, err := c.do(req, "VerifyTransaction")
	if err != nil {
		return nil, err
	}
	if gjson.GetBytes(body, "status").String() != "success" {
		return nil, &ProviderError{Provider: c.Name(), Op: "VerifyTransaction", Network: false, Err: fmt.Errorf("verification rejected: %s", gjson.GetBytes(body, "message").String())}
	}
	data := gjson.GetBytes(body, "data")
	return &VerifiedPayment{
		Status:         MapFlutterwaveStatus(data.Get("status").String()),
		Amount:         data.Get("amount").Float(),
		Currency:       data.Get("currency").String(),
		PaymentMethod:  data.Get("payment_type").String(),
		PaymentAccount: data.Get("customer.email").String(),
		Message:        data.Get("processor_response").String(),
	}, nil
}

// MapFlutterwaveStatus maps Flutterwave transaction statuses onto the
// internal payment states.
func MapFlutterwaveStatus(status string) types.PaymentStatus {
	switch status {
	case "successful":
		return types.PAYMENT_COMPLETED
	case "pending":
		return types.PAYMENT_PENDING
	case "refunded":
		return types.PAYMENT_REFUNDED
	}
	return types.PAYMENT_FAILED
}
