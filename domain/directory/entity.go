package directory

import (
	"time"
)

// Member is an entry in the admin user directory. The directory is managed
// separately from login accounts: it carries a role but no credentials.
type Member struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Name      string    `gorm:"not null;type:text" json:"name"`
	Email     string    `gorm:"uniqueIndex;not null;type:text" json:"email"`
	Role      string    `gorm:"not null;type:text" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the table name for the Member entity.
func (Member) TableName() string {
	return "directory_members"
}
