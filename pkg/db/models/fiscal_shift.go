package models

import (
	"time"

	"github.com/google/uuid"
)

// FiscalShift is an open session on a branch fiscal register. Gift card sales
// require an open shift on the branch.
type FiscalShift struct {
	ID       uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID uuid.UUID  `gorm:"column:branch_id;type:uuid;not null;index"`
	OpenedBy *uuid.UUID `gorm:"column:opened_by;type:uuid"`
	OpenedAt time.Time  `gorm:"column:opened_at;not null"`
	ClosedAt *time.Time `gorm:"column:closed_at"`
}
