package lib

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"tbs/src/config"
	"tbs/src/types"
	"time"

	"github.com/tidwall/gjson"
)

const pesapalTokenCacheKey = "pesapal:token"

// Pesapal bearer tokens are valid for 5 minutes; cache slightly under that.
const pesapalTokenTTL = 4 * time.Minute

type PesapalClient struct {
	BaseURL        string
	ConsumerKey    string
	ConsumerSecret string
	IPNId          string
	HTTP           *http.Client
}

func NewPesapalClient() *PesapalClient {
	return &PesapalClient{
		BaseURL:        config.PesapalBaseURL(),
		ConsumerKey:    os.Getenv("PESAPAL_CONSUMER_KEY"),
		ConsumerSecret: os.Getenv("PESAPAL_CONSUMER_SECRET"),
		IPNId:          os.Getenv("PESAPAL_IPN_ID"),
		HTTP:           providerHTTPClient,
	}
}

func (c *PesapalClient) Name() string {
	return types.PROVIDER_PESAPAL
}

func (c *PesapalClient) do(req *http.Request, op string) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
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

func (c *PesapalClient) requestToken(ctx context.Context) (string, error) {
	if rd := GetRedisClient(); rd != nil {
		if token, err := rd.Get(ctx, pesapalTokenCacheKey).Result(); err == nil && token != "" {
			return token, nil
		}
	}
	payload, _ := json.Marshal(map[string]string{
		"consumer_key":    c.ConsumerKey,
		"consumer_secret": c.ConsumerSecret,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/Auth/RequestToken", bytes.NewReader(payload))
	if err != nil {
		return "", &ProviderError{Provider: c.Name(), Op: "RequestToken", Network: false, Err: err}
	}
	body, err := c.do(req, "RequestToken")
	if err != nil {
		return "", err
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() && e.Type != gjson.Null {
		return "", &ProviderError{Provider: c.Name(), Op: "RequestToken", Network: false, Err: fmt.Errorf("authentication rejected: %s", e.Raw)}
	}
	token := gjson.GetBytes(body, "token").String()
	if token == "" {
		return "", &ProviderError{Provider: c.Name(), Op: "RequestToken", Network: false, Err: fmt.Errorf("no token in response")}
	}
	if rd := GetRedisClient(); rd != nil {
		if err := rd.Set(ctx, pesapalTokenCacheKey, token, pesapalTokenTTL).Err(); err != nil {
			log.Printf("[pesapal] Error caching token: %s\n", err.Error())
		}
	}
	return token, nil
}

func (c *PesapalClient) InitiatePayment(ctx context.Context, params *InitiatePaymentParams) (*InitiatedPayment, error) {
	token, err := c.requestToken(ctx)
	if err != nil {
		return nil, err
	}
	payload, _ := json.Marshal(map[string]any{
		"id":              params.MerchantReference,
		"currency":        params.Currency,
		"amount":          params.Amount,
		"description":     params.Description,
		"callback_url":    params.CallbackURL,
		"notification_id": c.IPNId,
		"billing_address": map[string]string{
			"email_address": params.CustomerEmail,
			"phone_number":  params.CustomerPhone,
			"first_name":    params.CustomerName,
		},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/api/Transactions/SubmitOrderRequest", bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Op: "SubmitOrderRequest", Network: false, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	body, err := c.do(req, "SubmitOrderRequest")
	if err != nil {
		return nil, err
	}
	if e := gjson.GetBytes(body, "error"); e.Exists() && e.Type != gjson.Null {
		return nil, &ProviderError{Provider: c.Name(), Op: "SubmitOrderRequest", Network: false, Err: fmt.Errorf("order rejected: %s", e.Raw)}
	}
	trackingId := gjson.GetBytes(body, "order_tracking_id").String()
	redirectURL := gjson.GetBytes(body, "redirect_url").String()
	if trackingId == "" || redirectURL == "" {
		return nil, &ProviderError{Provider: c.Name(), Op: "SubmitOrderRequest", Network: false, Err: fmt.Errorf("incomplete response: %s", string(body))}
	}
	return &InitiatedPayment{TrackingID: trackingId, RedirectURL: redirectURL}, nil
}

func (c *PesapalClient) VerifyPayment(ctx context.Context, trackingId string) (*VerifiedPayment, error) {
	token, err := c.requestToken(ctx)
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/api/Transactions/GetTransactionStatus?orderTrackingId=%s", c.BaseURL, url.QueryEscape(trackingId))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{Provider: c.Name(), Op: "GetTransactionStatus", Network: false, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	body, err := c.do(req, "GetTransactionStatus")
	if err != nil {
		return nil, err
	}
	if e := gjson.GetBytes(body, "error.error_type"); e.Exists() {
		return nil, &ProviderError{Provider: c.Name(), Op: "GetTransactionStatus", Network: false, Err: fmt.Errorf("status query rejected: %s", gjson.GetBytes(body, "error").Raw)}
	}
	statusCode := gjson.GetBytes(body, "status_code").Int()
	return &VerifiedPayment{
		Status:           MapPesapalStatus(statusCode),
		Amount:           gjson.GetBytes(body, "amount").Float(),
		Currency:         gjson.GetBytes(body, "currency").String(),
		PaymentMethod:    gjson.GetBytes(body, "payment_method").String(),
		PaymentAccount:   gjson.GetBytes(body, "payment_account").String(),
		ConfirmationCode: gjson.GetBytes(body, "confirmation_code").String(),
		Message:          gjson.GetBytes(body, "payment_status_description").String(),
	}, nil
}

// MapPesapalStatus maps Pesapal numeric status codes onto the internal
// payment states. Unknown codes are treated as failures.
func MapPesapalStatus(code int64) types.PaymentStatus {
	switch code {
	case 1:
		return types.PAYMENT_COMPLETED
	case 2:
		return types.PAYMENT_PENDING
	case 3, 4:
		return types.PAYMENT_FAILED
	case 5:
		return types.PAYMENT_REFUNDED
	}
	return types.PAYMENT_FAILED
}
