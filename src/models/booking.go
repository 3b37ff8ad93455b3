package models

import (
	"tbs/src/types"
	"time"
)

type Booking struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	Reference string `gorm:"uniqueIndex" json:"reference"`

	GuestName    string `json:"guest_name,omitempty"`
	GuestEmail   string `json:"guest_email,omitempty"`
	GuestPhone   string `json:"guest_phone,omitempty"`
	GuestCountry string `json:"guest_country,omitempty"`

	Status        types.BookingStatus        `gorm:"default:pending" json:"status,omitempty"`
	PaymentStatus types.BookingPaymentStatus `gorm:"default:pending" json:"payment_status,omitempty"`

	// Price breakdown is computed once at creation and never recomputed
	// from items afterward.
	BaseAmount  float64 `json:"base_amount,omitempty"`
	ServiceFee  float64 `json:"service_fee,omitempty"`
	Taxes       float64 `json:"taxes,omitempty"`
	Discount    float64 `json:"discount,omitempty"`
	TotalAmount float64 `json:"total_amount,omitempty"`
	Currency    string  `json:"currency,omitempty"`

	SpecialRequest string `json:"special_request,omitempty"`

	Items    []*BookingItem `json:"items,omitempty"`
	Payments []*Payment     `json:"payments,omitempty"`

	types.Timestamps
}

type BookingItem struct {
	ID        uint `gorm:"primarykey" json:"id"`
	BookingID uint `json:"booking_id,omitempty"`

	ItemType       types.ItemType `json:"type,omitempty"`
	CatalogID      uint           `json:"catalog_id,omitempty"`
	Qty            uint           `json:"qty,omitempty"`
	UnitPrice      float64        `json:"unit_price,omitempty"`
	StartDate      *time.Time     `json:"start_date,omitempty"`
	EndDate        *time.Time     `json:"end_date,omitempty"`
	SpecialRequest string         `json:"special_request,omitempty"`

	types.Timestamps
}
