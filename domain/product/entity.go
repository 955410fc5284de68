package product

import (
	"time"
)

// Product is a catalog entry managed through the admin UI.
type Product struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;type:text" json:"name"`
	Price     float64   `gorm:"not null" json:"price"`
	Category  string    `gorm:"not null;type:text" json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Product entity.
func (Product) TableName() string {
	return "products"
}

// CreateProductRequest carries the fields accepted when creating a product.
type CreateProductRequest struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// UpdateProductRequest carries the fields accepted when updating a product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Category *string  `json:"category"`
}
