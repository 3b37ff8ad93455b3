package lib

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"tbs/src/types"
	"time"
)

// InitiatePaymentParams is everything a gateway needs to open a hosted
// payment page for a booking.
type InitiatePaymentParams struct {
	Amount            float64
	Currency          string
	Description       string
	MerchantReference string
	CallbackURL       string
	CustomerName      string
	CustomerEmail     string
	CustomerPhone     string
}

type InitiatedPayment struct {
	TrackingID  string
	RedirectURL string
}

// VerifiedPayment is the provider's own answer to a status query. Webhook
// payloads are never trusted for these values.
type VerifiedPayment struct {
	Status           types.PaymentStatus
	Amount           float64
	Currency         string
	PaymentMethod    string
	PaymentAccount   string
	ConfirmationCode string
	Message          string
}

// Provider is the closed set of payment gateways the service dispatches to.
type Provider interface {
	Name() string
	InitiatePayment(ctx context.Context, params *InitiatePaymentParams) (*InitiatedPayment, error)
	VerifyPayment(ctx context.Context, trackingId string) (*VerifiedPayment, error)
}

// ProviderError wraps any failure talking to a gateway. Network marks
// communication failures (timeouts, 5xx) that are worth retrying; data
// errors (rejected payloads, unknown transactions) are not.
type ProviderError struct {
	Provider string
	Op       string
	Network  bool
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Provider, e.Op, e.Err.Error())
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is a retryable provider-communication
// failure. The IPN handler keys its 500-vs-200 response off this.
func IsNetworkError(err error) bool {
	pe, ok := err.(*ProviderError)
	if !ok {
		return false
	}
	return pe.Network
}

var providerHTTPClient = &http.Client{Timeout: 30 * time.Second}

// The registry is lazily populated from request goroutines, so an initiation
// and a webhook delivery can construct their providers concurrently.
var providersMu sync.RWMutex
var providers = map[string]Provider{}

func GetProvider(name string) (Provider, error) {
	providersMu.RLock()
	p, ok := providers[name]
	providersMu.RUnlock()
	if ok {
		return p, nil
	}
	providersMu.Lock()
	defer providersMu.Unlock()
	if p, ok := providers[name]; ok {
		return p, nil
	}
	switch name {
	case types.PROVIDER_PESAPAL:
		p := NewPesapalClient()
		providers[name] = p
		return p, nil
	case types.PROVIDER_FLUTTERWAVE:
		p := NewFlutterwaveClient()
		providers[name] = p
		return p, nil
	}
	return nil, fmt.Errorf("unknown payment provider: %s", name)
}

// RegisterProvider replaces a provider instance with a custom implementation
func RegisterProvider(name string, p Provider) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = p
}
