package models

import "tbs/src/types"

type TourPackage struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Slug string `gorm:"uniqueIndex" json:"slug"`

	Title          string  `json:"title,omitempty"`
	Location       string  `json:"location,omitempty"`
	Summary        string  `json:"summary,omitempty"`
	PricePerPerson float64 `json:"price_per_person,omitempty"`
	Currency       string  `json:"currency,omitempty"`
	DurationDays   uint    `json:"duration_days,omitempty"`
	Active         bool    `gorm:"default:true" json:"active"`

	types.Timestamps
}
