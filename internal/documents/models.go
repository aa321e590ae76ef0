package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Artifact tracks one rendered voucher PDF. Once Locked is set the artifact is
// immutable: no operation may re-render or re-sign it with different content.
type Artifact struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReferenceNumber string         `gorm:"not null;index" json:"reference_number"`
	Handle          string         `gorm:"uniqueIndex;not null" json:"handle"`
	Version         int            `gorm:"not null;default:1" json:"version"`
	PreparedBy      string         `json:"prepared_by"`
	Snapshot        datatypes.JSON `json:"-"`
	Locked          bool           `gorm:"not null;default:false" json:"locked"`
	SignedBy        string         `json:"signed_by,omitempty"`
	SignedAt        *time.Time     `json:"signed_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Attachment is a supporting document uploaded alongside a request.
type Attachment struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID  uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	FileName   string    `gorm:"not null" json:"file_name"`
	StorageKey string    `gorm:"not null" json:"storage_key"`
	FileType   string    `json:"file_type"`
	FileSize   int64     `json:"file_size"`
	UploadedBy uuid.UUID `gorm:"type:uuid" json:"uploaded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// VoucherData is the request snapshot the renderer works from.
type VoucherData struct {
	ReferenceNumber   string        `json:"reference_number"`
	RequestDate       time.Time     `json:"request_date"`
	Beneficiary       string        `json:"beneficiary"`
	BankName          string        `json:"bank_name"`
	AccountNumber     string        `json:"account_number"`
	AccountName       string        `json:"account_name"`
	Amount            float64       `json:"amount"`
	Currency          string        `json:"currency"`
	AmountInWords     string        `json:"amount_in_words"`
	FundingSourceCode string        `json:"funding_source_code"`
	QuickBooksCode    string        `json:"quickbooks_code"`
	DescriptionEn     string        `json:"description_en"`
	DescriptionFr     string        `json:"description_fr"`
	Items             []VoucherItem `json:"items"`
	Body              string        `json:"body"`
}

// VoucherItem is one particulars row of the rendered table.
type VoucherItem struct {
	Particulars       string  `json:"particulars"`
	Amount            float64 `json:"amount"`
	AccountName       string  `json:"account_name"`
	FundingSourceCode string  `json:"funding_source_code"`
	QuickBooksCode    string  `json:"quickbooks_code"`
}
