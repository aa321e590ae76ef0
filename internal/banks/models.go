package banks

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Bank is a payout bank and its known account numbers, offered as picker data
// when a clerk fills in a requisition.
type Bank struct {
	ID       uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name     string         `gorm:"uniqueIndex;not null" json:"name"`
	Accounts pq.StringArray `gorm:"type:text[]" json:"accounts"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChartOfAccount is one QuickBooks account code. Sub-accounts keep a pointer
// to their parent code and the full "parent:child" name for searching.
type ChartOfAccount struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code       string    `gorm:"uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"not null" json:"name"`
	Category   string    `json:"category,omitempty"`
	IsSub      bool      `gorm:"default:false" json:"is_sub"`
	ParentCode string    `json:"parent_code,omitempty"`
	FullName   string    `json:"full_name,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
