package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer holds contact data plus the loyalty point balances.
// current_points never exceeds lifetime_points.
type Customer struct {
	ID             uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name           string     `gorm:"column:name;not null"`
	Phone          *string    `gorm:"column:phone"`
	Email          *string    `gorm:"column:email"`
	CurrentPoints  int        `gorm:"column:current_points;not null;default:0"`
	LifetimePoints int        `gorm:"column:lifetime_points;not null;default:0"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt      *time.Time `gorm:"column:deleted_at;index"`
}
