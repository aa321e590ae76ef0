package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"isdao/payment-portal/payment-portal-backend/pkg/workflows"
)

const counterName = "payment_request"

// Query filters request listings. IDs, when set, restricts the listing to the
// given identities (used by the search index).
type Query struct {
	RequesterID *uuid.UUID
	ManagerID   *uuid.UUID
	Statuses    []workflows.Status
	Search      string
	IDs         []uuid.UUID
}

// Repository provides atomic load/save of the request aggregate. Transitions
// are guarded by the status the caller last read: a mismatch yields
// ErrConflict and no mutation.
type Repository interface {
	Create(ctx context.Context, req *PaymentRequest) error
	Get(ctx context.Context, id uuid.UUID) (*PaymentRequest, error)
	List(ctx context.Context, q Query) ([]PaymentRequest, error)

	// SaveTransition persists the new status and appends the audit entry in
	// one transaction.
	SaveTransition(ctx context.Context, req *PaymentRequest, expected workflows.Status, entry *AuditEntry) error
	// UpdateFields applies voucher/letter field changes and appends an EDITED
	// entry without touching the status.
	UpdateFields(ctx context.Context, req *PaymentRequest, expected workflows.Status, entry *AuditEntry) error

	SetArtifactHandle(ctx context.Context, id uuid.UUID, handle string) error
	NextReference(ctx context.Context) (string, error)
	History(ctx context.Context, id uuid.UUID) ([]AuditEntry, error)
}

type gormRepository struct {
	db     *gorm.DB
	prefix string
	start  int64
}

// NewRepository creates the postgres-backed repository. prefix and start
// configure reference-number generation, e.g. ("ONLINE", 100) -> ONLINE-0100.
func NewRepository(db *gorm.DB, prefix string, start int64) Repository {
	return &gormRepository{db: db, prefix: prefix, start: start}
}

func (r *gormRepository) Create(ctx context.Context, req *PaymentRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *gormRepository) Get(ctx context.Context, id uuid.UUID) (*PaymentRequest, error) {
	var req PaymentRequest
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *gormRepository) List(ctx context.Context, q Query) ([]PaymentRequest, error) {
	db := r.db.WithContext(ctx).Model(&PaymentRequest{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })

	if q.RequesterID != nil {
		db = db.Where("requester_id = ?", *q.RequesterID)
	}
	if q.ManagerID != nil {
		db = db.Where("manager_id = ?", *q.ManagerID)
	}
	if len(q.Statuses) > 0 {
		db = db.Where("status IN ?", q.Statuses)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("reference_number ILIKE ? OR beneficiary ILIKE ?", like, like)
	}
	if q.IDs != nil {
		db = db.Where("id IN ?", q.IDs)
	}

	var out []PaymentRequest
	err := db.Order("created_at DESC").Find(&out).Error
	return out, err
}

func (r *gormRepository) SaveTransition(ctx context.Context, req *PaymentRequest, expected workflows.Status, entry *AuditEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&PaymentRequest{}).
			Where("id = ? AND status = ?", req.ID, expected).
			Update("status", req.Status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		entry.RequestID = req.ID
		return tx.Create(entry).Error
	})
}

func (r *gormRepository) UpdateFields(ctx context.Context, req *PaymentRequest, expected workflows.Status, entry *AuditEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&PaymentRequest{}).
			Where("id = ? AND status = ?", req.ID, expected).
			Updates(map[string]interface{}{
				"beneficiary":         req.Beneficiary,
				"bank_name":           req.BankName,
				"account_number":      req.AccountNumber,
				"account_name":        req.AccountName,
				"amount":              req.Amount,
				"currency":            req.Currency,
				"amount_in_words":     req.AmountInWords,
				"funding_source_code": req.FundingSourceCode,
				"quick_books_code":    req.QuickBooksCode,
				"description_en":      req.DescriptionEn,
				"description_fr":      req.DescriptionFr,
				"body":                req.Body,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Where("request_id = ?", req.ID).Delete(&LineItem{}).Error; err != nil {
			return err
		}
		for i := range req.Items {
			req.Items[i].ID = uuid.Nil
			req.Items[i].RequestID = req.ID
		}
		if len(req.Items) > 0 {
			if err := tx.Create(&req.Items).Error; err != nil {
				return err
			}
		}

		entry.RequestID = req.ID
		return tx.Create(entry).Error
	})
}

func (r *gormRepository) SetArtifactHandle(ctx context.Context, id uuid.UUID, handle string) error {
	return r.db.WithContext(ctx).Model(&PaymentRequest{}).
		Where("id = ?", id).
		Update("artifact_handle", handle).Error
}

func (r *gormRepository) NextReference(ctx context.Context) (string, error) {
	var seq int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO reference_counters (name, seq) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET seq = reference_counters.seq + 1
		RETURNING seq`, counterName, r.start).Scan(&seq).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", r.prefix, seq), nil
}

func (r *gormRepository) History(ctx context.Context, id uuid.UUID) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := r.db.WithContext(ctx).
		Where("request_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&entries).Error
	return entries, err
}
