package order

import (
	"time"
)

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Order is a checkout record tied to the account that placed it.
type Order struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Reference string    `gorm:"uniqueIndex;not null;type:text" json:"reference"`
	UserID    string    `gorm:"index;not null;type:text" json:"user_id"`
	Items     []Item    `gorm:"foreignKey:OrderID" json:"items"`
	Total     float64   `gorm:"not null" json:"total"`
	Status    Status    `gorm:"not null;default:pending;type:text" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Order entity.
func (Order) TableName() string {
	return "orders"
}

// Item is a single line of an order. Lines are a snapshot of the product
// at checkout time, not references into the catalog.
type Item struct {
	ID       uint    `gorm:"primaryKey" json:"-"`
	OrderID  string  `gorm:"index;not null;type:text" json:"-"`
	Title    string  `gorm:"not null;type:text" json:"title"`
	Price    float64 `gorm:"not null" json:"price"`
	Quantity int     `gorm:"not null" json:"quantity"`
}

// TableName returns the table name for the Item entity.
func (Item) TableName() string {
	return "order_items"
}
