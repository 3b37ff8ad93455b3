package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type BookingStatus string

const (
	BOOKING_PENDING   BookingStatus = "pending"
	BOOKING_CONFIRMED BookingStatus = "confirmed"
	BOOKING_CANCELLED BookingStatus = "cancelled"
)

type BookingPaymentStatus string

const (
	BOOKING_PAYMENT_PENDING  BookingPaymentStatus = "pending"
	BOOKING_PAYMENT_PAID     BookingPaymentStatus = "paid"
	BOOKING_PAYMENT_FAILED   BookingPaymentStatus = "failed"
	BOOKING_PAYMENT_REFUNDED BookingPaymentStatus = "refunded"
)

type PaymentStatus string

const (
	PAYMENT_PENDING   PaymentStatus = "PENDING"
	PAYMENT_COMPLETED PaymentStatus = "COMPLETED"
	PAYMENT_FAILED    PaymentStatus = "FAILED"
	PAYMENT_REFUNDED  PaymentStatus = "REFUNDED"
)

// Terminal reports whether no further transition is expected from s.
func (s PaymentStatus) Terminal() bool {
	return s == PAYMENT_COMPLETED || s == PAYMENT_FAILED || s == PAYMENT_REFUNDED
}

// BookingCascade returns the booking-side transition for a verified payment
// status. ok is false for PENDING, which leaves the booking untouched.
func BookingCascade(status PaymentStatus) (BookingStatus, BookingPaymentStatus, bool) {
	switch status {
	case PAYMENT_COMPLETED:
		return BOOKING_CONFIRMED, BOOKING_PAYMENT_PAID, true
	case PAYMENT_FAILED:
		return BOOKING_CANCELLED, BOOKING_PAYMENT_FAILED, true
	case PAYMENT_REFUNDED:
		return BOOKING_CANCELLED, BOOKING_PAYMENT_REFUNDED, true
	}
	return "", "", false
}

const (
	PROVIDER_PESAPAL     = "pesapal"
	PROVIDER_FLUTTERWAVE = "flutterwave"
)

type ItemType string

const (
	ITEM_PACKAGE       ItemType = "package"
	ITEM_ACCOMMODATION ItemType = "accommodation"
	ITEM_EXCURSION     ItemType = "excursion"
	ITEM_TRANSPORT     ItemType = "transport"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type GuestDetails struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
}

type BookingItemRequest struct {
	Type           string  `json:"type" binding:"required,oneof=package accommodation excursion transport"`
	CatalogID      uint    `json:"catalog_id" binding:"required"`
	Qty            uint    `json:"qty" binding:"required,min=1"`
	UnitPrice      float64 `json:"unit_price" binding:"required,gt=0"`
	StartDate      string  `json:"start_date" binding:"required,traveldate"`
	EndDate        *string `json:"end_date,omitempty" binding:"omitempty,traveldate,gtdate=StartDate"`
	SpecialRequest string  `json:"special_request,omitempty"`
}

type PriceBreakdown struct {
	BaseAmount float64 `json:"base_amount" binding:"required,gt=0"`
	ServiceFee float64 `json:"service_fee,omitempty"`
	Taxes      float64 `json:"taxes,omitempty"`
	Discount   float64 `json:"discount,omitempty"`
	Currency   string  `json:"currency" binding:"required,len=3"`
}

type CreateBookingRequestBody struct {
	Reference      string               `json:"reference,omitempty"`
	Items          []BookingItemRequest `json:"items" binding:"required,min=1,dive"`
	GuestDetails   GuestDetails         `json:"guest_details" binding:"required"`
	PriceBreakdown PriceBreakdown       `json:"price_breakdown" binding:"required"`
	SpecialRequest string               `json:"special_request,omitempty"`
}

type LookupBookingRequestBody struct {
	Reference string `json:"reference" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
}

type ProcessPaymentRequestBody struct {
	Amount           float64      `json:"amount"`
	Currency         string       `json:"currency" binding:"required,len=3"`
	Provider         string       `json:"provider,omitempty" binding:"omitempty,oneof=pesapal flutterwave"`
	BookingReference string       `json:"booking_reference" binding:"required"`
	Customer         GuestDetails `json:"customer" binding:"required"`
}

type ProcessPaymentResponse struct {
	TransactionID string `json:"transactionId"`
	PaymentStatus string `json:"paymentStatus"`
	PaymentURL    string `json:"paymentUrl,omitempty"`
}

type CreatePackageRequestBody struct {
	Title          string  `json:"title" binding:"required"`
	Location       string  `json:"location" binding:"required"`
	Summary        string  `json:"summary,omitempty"`
	PricePerPerson float64 `json:"price_per_person" binding:"required,gt=0"`
	Currency       string  `json:"currency" binding:"required,len=3"`
	DurationDays   uint    `json:"duration_days" binding:"required,min=1"`
}

// IPNRequest carries the provider-defined notification fields. The same
// shape arrives either as query-string parameters or as a JSON body.
type IPNRequest struct {
	OrderTrackingID        string `json:"OrderTrackingId" form:"OrderTrackingId"`
	OrderMerchantReference string `json:"OrderMerchantReference" form:"OrderMerchantReference"`
	OrderNotificationType  string `json:"OrderNotificationType" form:"OrderNotificationType"`
}

// IPNResponse echoes the notification fields back to the provider together
// with a status code: 200 tells the provider to stop retrying, 500 to retry
// later. The shape is the provider's contract, not ours.
type IPNResponse struct {
	OrderTrackingID        string `json:"OrderTrackingId"`
	OrderMerchantReference string `json:"OrderMerchantReference"`
	OrderNotificationType  string `json:"OrderNotificationType"`
	Status                 int    `json:"status"`
}
