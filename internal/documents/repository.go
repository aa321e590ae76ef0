package documents

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	CreateArtifact(ctx context.Context, art *Artifact) error
	GetArtifactByHandle(ctx context.Context, handle string) (*Artifact, error)
	UpdateArtifact(ctx context.Context, art *Artifact) error
	ListArtifacts(ctx context.Context, referenceNumber string) ([]Artifact, error)

	CreateAttachment(ctx context.Context, att *Attachment) error
	GetAttachment(ctx context.Context, id uuid.UUID) (*Attachment, error)
	ListAttachments(ctx context.Context, requestID uuid.UUID) ([]Attachment, error)
	DeleteAttachment(ctx context.Context, id uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateArtifact(ctx context.Context, art *Artifact) error {
	return r.db.WithContext(ctx).Create(art).Error
}

func (r *gormRepository) GetArtifactByHandle(ctx context.Context, handle string) (*Artifact, error) {
	var art Artifact
	err := r.db.WithContext(ctx).First(&art, "handle = ?", handle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &art, nil
}

func (r *gormRepository) UpdateArtifact(ctx context.Context, art *Artifact) error {
	return r.db.WithContext(ctx).Save(art).Error
}

func (r *gormRepository) ListArtifacts(ctx context.Context, referenceNumber string) ([]Artifact, error) {
	var arts []Artifact
	err := r.db.WithContext(ctx).
		Where("reference_number = ?", referenceNumber).
		Order("version DESC").
		Find(&arts).Error
	return arts, err
}

func (r *gormRepository) CreateAttachment(ctx context.Context, att *Attachment) error {
	return r.db.WithContext(ctx).Create(att).Error
}

func (r *gormRepository) GetAttachment(ctx context.Context, id uuid.UUID) (*Attachment, error) {
	var att Attachment
	err := r.db.WithContext(ctx).First(&att, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &att, nil
}

func (r *gormRepository) ListAttachments(ctx context.Context, requestID uuid.UUID) ([]Attachment, error) {
	var atts []Attachment
	err := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC").
		Find(&atts).Error
	return atts, err
}

func (r *gormRepository) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&Attachment{}, "id = ?", id).Error
}
