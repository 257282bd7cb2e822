package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Product is a bookable clinic offering with its own price, duration
// and daily capacity.
type Product struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	IsActive          bool      `json:"is_active"`
	DurationMinutes   int       `json:"duration_minutes"`
	QuotaPerDay       int       `json:"quota_per_day"`
	PriceSen          int64     `json:"price_sen"`
	DepositPercentage int       `json:"deposit_percentage"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DepositSen returns the amount payable up front to hold a slot.
func (p *Product) DepositSen() int64 {
	if p.DepositPercentage <= 0 {
		return 0
	}
	if p.DepositPercentage >= 100 {
		return p.PriceSen
	}
	return p.PriceSen * int64(p.DepositPercentage) / 100
}

// CreateProductRequest is the admin payload for creating a product.
type CreateProductRequest struct {
	Name              string `json:"name" validate:"required"`
	Description       string `json:"description"`
	IsActive          bool   `json:"is_active"`
	DurationMinutes   int    `json:"duration_minutes" validate:"required,gt=0"`
	QuotaPerDay       int    `json:"quota_per_day" validate:"gte=0"`
	PriceSen          int64  `json:"price_sen" validate:"gte=0"`
	DepositPercentage int    `json:"deposit_percentage" validate:"gte=0,lte=100"`
}

// UpdateProductRequest is the admin payload for updating a product.
// Pointer fields distinguish "leave unchanged" from zero values.
type UpdateProductRequest struct {
	Name              *string `json:"name,omitempty"`
	Description       *string `json:"description,omitempty"`
	IsActive          *bool   `json:"is_active,omitempty"`
	DurationMinutes   *int    `json:"duration_minutes,omitempty" validate:"omitempty,gt=0"`
	QuotaPerDay       *int    `json:"quota_per_day,omitempty" validate:"omitempty,gte=0"`
	PriceSen          *int64  `json:"price_sen,omitempty" validate:"omitempty,gte=0"`
	DepositPercentage *int    `json:"deposit_percentage,omitempty" validate:"omitempty,gte=0,lte=100"`
}
