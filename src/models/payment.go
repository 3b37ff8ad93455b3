package models

import (
	"tbs/src/types"

	"github.com/google/uuid"
)

type Payment struct {
	ID uuid.UUID `gorm:"primarykey;type:uuid;default:gen_random_uuid()" json:"id"`

	BookingID uint `json:"booking_id,omitempty"`

	Provider string `json:"provider,omitempty"`

	// OrderTrackingID is assigned by the provider and is the primary lookup
	// key for verification. MerchantReference is ours and only a fallback.
	OrderTrackingID   string `gorm:"index" json:"order_tracking_id,omitempty"`
	MerchantReference string `gorm:"index" json:"merchant_reference,omitempty"`

	Status   types.PaymentStatus `gorm:"default:PENDING" json:"status,omitempty"`
	Amount   float64             `json:"amount,omitempty"`
	Currency string              `json:"currency,omitempty"`

	// Audit fields populated from verified provider data, never from the
	// inbound webhook body.
	PaymentMethod    string `json:"payment_method,omitempty"`
	PaymentAccount   string `json:"payment_account,omitempty"`
	ConfirmationCode string `json:"confirmation_code,omitempty"`

	Metadata types.JSONB `json:"metadata,omitempty"`

	types.Timestamps

	Booking Booking `gorm:"foreignKey:booking_id" json:"-"`
}
