package messages

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotParticipant = errors.New("not a participant of this message")
	ErrEmptyMessage   = errors.New("title and content are required")
)

// Pusher delivers a message to the recipient's live session, when one exists.
type Pusher interface {
	PushMessage(userID uuid.UUID, msg *Message)
}

// Service is the internal mailbox between portal users.
type Service struct {
	repo   Repository
	pusher Pusher
	log    *zap.Logger
}

// NewService wires the mailbox. pusher may be nil.
func NewService(repo Repository, pusher Pusher, log *zap.Logger) *Service {
	return &Service{repo: repo, pusher: pusher, log: log}
}

func (s *Service) Send(ctx context.Context, senderID, recipientID uuid.UUID, title, content string) (*Message, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, ErrEmptyMessage
	}
	msg := &Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Title:       title,
		Content:     content,
	}
	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, err
	}
	full, err := s.repo.Get(ctx, msg.ID)
	if err != nil {
		return nil, err
	}
	if s.pusher != nil {
		s.pusher.PushMessage(recipientID, full)
	}
	return full, nil
}

func (s *Service) ListFor(ctx context.Context, userID uuid.UUID) ([]Message, error) {
	return s.repo.ListFor(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead flags a received message as read. Only the recipient may.
func (s *Service) MarkRead(ctx context.Context, id, userID uuid.UUID) (*Message, error) {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.RecipientID != userID {
		return nil, ErrNotParticipant
	}
	if msg.IsRead {
		return msg, nil
	}
	msg.IsRead = true
	if err := s.repo.Update(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

// Archive hides the message from the caller's own view only.
func (s *Service) Archive(ctx context.Context, id, userID uuid.UUID) error {
	msg, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	switch userID {
	case msg.SenderID:
		msg.SenderArchived = true
	case msg.RecipientID:
		msg.RecipientArchived = true
	default:
		return ErrNotParticipant
	}
	return s.repo.Update(ctx, msg)
}
