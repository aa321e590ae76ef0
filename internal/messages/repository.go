package messages

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrMessageNotFound = errors.New("message not found")

type Repository interface {
	Create(ctx context.Context, msg *Message) error
	Get(ctx context.Context, id uuid.UUID) (*Message, error)
	ListFor(ctx context.Context, userID uuid.UUID) ([]Message, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
	Update(ctx context.Context, msg *Message) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *gormRepository) Get(ctx context.Context, id uuid.UUID) (*Message, error) {
	var msg Message
	err := r.db.WithContext(ctx).
		Preload("Sender").Preload("Recipient").
		First(&msg, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListFor returns everything the user can still see: received messages they
// have not archived plus sent messages they have not archived, newest first.
func (r *gormRepository) ListFor(ctx context.Context, userID uuid.UUID) ([]Message, error) {
	var out []Message
	err := r.db.WithContext(ctx).
		Preload("Sender").Preload("Recipient").
		Where("(recipient_id = ? AND recipient_archived = false) OR (sender_id = ? AND sender_archived = false)", userID, userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *gormRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&Message{}).
		Where("recipient_id = ? AND is_read = false AND recipient_archived = false", userID).
		Count(&n).Error
	return n, err
}

func (r *gormRepository) Update(ctx context.Context, msg *Message) error {
	return r.db.WithContext(ctx).Save(msg).Error
}
