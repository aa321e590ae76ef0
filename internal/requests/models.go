package requests

import (
	"time"

	"github.com/google/uuid"

	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

// Audit action tags not produced by the approval chain itself.
const (
	AuditCreated   = "CREATED"
	AuditSubmitted = "SUBMITTED"
	AuditEdited    = "EDITED"
)

// PaymentRequest is the aggregate root: the requisition, its voucher fields,
// line items and decision history form one consistency unit.
type PaymentRequest struct {
	ID              uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReferenceNumber string           `gorm:"uniqueIndex;not null" json:"reference_number"`
	Status          workflows.Status `gorm:"not null;index" json:"status"`

	RequesterID uuid.UUID `gorm:"type:uuid;not null;index" json:"requester_id"`
	// Manager assigned at creation time; reassigning a user's manager does not
	// retouch in-flight requests.
	ManagerID uuid.UUID `gorm:"type:uuid;not null;index" json:"manager_id"`

	Beneficiary       string  `json:"beneficiary"`
	BankName          string  `json:"bank_name"`
	AccountNumber     string  `json:"account_number"`
	AccountName       string  `json:"account_name"`
	Amount            float64 `json:"amount"`
	Currency          string  `gorm:"default:'USD'" json:"currency"`
	AmountInWords     string  `json:"amount_in_words"`
	FundingSourceCode string  `json:"funding_source_code"`
	QuickBooksCode    string  `json:"quickbooks_code"`
	DescriptionEn     string  `json:"description_en"`
	DescriptionFr     string  `json:"description_fr"`

	// Rich text letter accompanying the voucher.
	Body string `gorm:"type:text" json:"body"`

	// Handle of the rendered voucher PDF. Set once at creation, replaced once
	// more when the artifact is locked, never cleared.
	ArtifactHandle string `json:"artifact_handle"`

	Items   []LineItem   `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"items"`
	History []AuditEntry `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LineItem is one particulars row of the voucher table.
type LineItem struct {
	ID                uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID         uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	Position          int       `gorm:"not null" json:"position"`
	Particulars       string    `gorm:"not null" json:"particulars"`
	Amount            float64   `gorm:"not null" json:"amount"`
	AccountName       string    `json:"account_name"`
	FundingSourceCode string    `json:"funding_source_code"`
	QuickBooksCode    string    `json:"quickbooks_code"`
}

// AuditEntry is one immutable record in a request's decision history. Rows are
// only ever appended, in the same transaction as the status change they record.
type AuditEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	Action    string    `gorm:"not null" json:"action"`
	Comment   string    `json:"comment"`
	ActorID   uuid.UUID `gorm:"type:uuid;not null" json:"actor_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReferenceCounter backs reference-number generation: a single row per counter
// name, bumped with an atomic upsert-and-increment.
type ReferenceCounter struct {
	Name string `gorm:"primaryKey"`
	Seq  int64  `gorm:"not null"`
}

// ItemsTotal sums the line items. The engine never substitutes this for the
// declared amount; it is only used to validate the caller's declared total.
func (r *PaymentRequest) ItemsTotal() float64 {
	var total float64
	for _, it := range r.Items {
		total += it.Amount
	}
	return total
}
