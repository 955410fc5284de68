package feedback

import (
	"time"
)

// Feedback is a message submitted through the contact form.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null;type:text" json:"name"`
	Email     string    `gorm:"not null;type:text" json:"email"`
	Message   string    `gorm:"not null;type:text" json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for the Feedback entity.
func (Feedback) TableName() string {
	return "feedback"
}
