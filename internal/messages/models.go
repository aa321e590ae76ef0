package messages

import (
	"time"

	"github.com/google/uuid"

	"isdao/payment-portal/payment-portal-backend/internal/identity"
)

// Message is one internal mailbox item. Each side archives its own copy; the
// row itself is never deleted.
type Message struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID    uuid.UUID `gorm:"type:uuid;not null;index" json:"sender_id"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index" json:"recipient_id"`
	Title       string    `gorm:"not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`

	IsRead            bool `gorm:"default:false" json:"is_read"`
	SenderArchived    bool `gorm:"default:false" json:"-"`
	RecipientArchived bool `gorm:"default:false" json:"-"`

	Sender    *identity.User `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Recipient *identity.User `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
