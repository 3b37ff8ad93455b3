package utils

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"tbs/src/types"

	"github.com/google/uuid"
)

func IsProd() bool {
	return os.Getenv("API_ENV") == "production"
}

// NewBookingReference generates a human-shareable reference like TRV-4F2A9C1B.
func NewBookingReference() string {
	id := uuid.New()
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:8]
	return fmt.Sprintf("TRV-%s", short)
}

// NewMerchantReference derives a per-attempt reference from the booking
// reference. A booking can be retried, so each payment attempt gets its own.
func NewMerchantReference(bookingReference string) string {
	id := uuid.New()
	short := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))[:6]
	return fmt.Sprintf("%s-%s", bookingReference, short)
}

// ComputeTotal computes the booking total from the price breakdown. This
// happens once at creation; the total is never recomputed from items.
func ComputeTotal(pb *types.PriceBreakdown) float64 {
	return pb.BaseAmount + pb.ServiceFee + pb.Taxes - pb.Discount
}

func BuildCallbackURL(bookingReference string) string {
	appHost := os.Getenv("APP_HOST")
	return fmt.Sprintf("%s/booking/confirmation?ref=%s", appHost, url.QueryEscape(bookingReference))
}

func BuildConfirmationURL(bookingReference string) string {
	appHost := os.Getenv("APP_HOST")
	return fmt.Sprintf("%s/booking/%s/confirmation", appHost, url.PathEscape(bookingReference))
}
