// internal/models/product.go
package models

import (
	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name     string `json:"name" gorm:"size:255;not null"`
	Slug     string `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	ParentID *uint  `json:"parent_id" gorm:"index"`
	IsActive bool   `json:"is_active" gorm:"not null"`

	// Relationships
	Parent   *Category  `json:"-" gorm:"foreignKey:ParentID"`
	Children []Category `json:"children,omitempty" gorm:"-"`
}

// Product.Rating is derived: the mean grade of the product's active ratings.
type Product struct {
	BaseModel
	Name        string          `json:"name" gorm:"size:255;not null"`
	Slug        string          `json:"slug" gorm:"size:255;not null;index"`
	Description string          `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	ImageURL    string          `json:"image_url" gorm:"size:1024"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	CategoryID  uint            `json:"category_id" gorm:"not null;index"`
	SupplierID  uint            `json:"supplier_id" gorm:"not null;index"`
	Rating      float64         `json:"rating" gorm:"type:double precision;not null;default:0"`
	IsActive    bool            `json:"is_active" gorm:"not null"`

	// Relationships
	Category *Category `json:"-" gorm:"foreignKey:CategoryID"`
	Supplier *User     `json:"-" gorm:"foreignKey:SupplierID"`
}

// Available reports whether the product is listed: active and in stock.
func (p *Product) Available() bool {
	return p.IsActive && p.Stock > 0
}
