package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	CategoryElectronics ProductCategory = "electronics"
	CategoryClothing    ProductCategory = "clothing"
	CategoryHome        ProductCategory = "home"
	CategorySports      ProductCategory = "sports"
	CategoryBooks       ProductCategory = "books"
	CategoryToys        ProductCategory = "toys"
)

// Product is the sole source of truth for pricing and stock. Client-supplied
// prices are never trusted; checkout re-reads Price and Stock under a row lock.
type Product struct {
	ID          uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	Stock       int             `gorm:"not null;default:0" json:"stock"`
	Category    ProductCategory `gorm:"type:varchar(20);index" json:"category"`
	Images      []string        `gorm:"serializer:json" json:"images"`
	Model3DURL  string          `json:"model3d_url,omitempty"`
	Tags        []string        `gorm:"serializer:json" json:"tags,omitempty"`
	Rating      float64         `gorm:"default:0" json:"rating"`
	ReviewCount int             `gorm:"default:0" json:"review_count"`
	Weight      float64         `json:"weight,omitempty"`
	// Soft delete: products referenced by orders are deactivated, never removed.
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
