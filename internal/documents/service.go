package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"isdao/payment-portal/payment-portal-backend/pkg/storage"
)

var (
	// ErrArtifactNotFound means the handle no longer resolves to a tracked file.
	ErrArtifactNotFound = errors.New("artifact not found")
	// ErrArtifactLocked rejects any attempt to re-sign a locked artifact with
	// different data.
	ErrArtifactLocked = errors.New("artifact is locked and cannot be modified")
	// ErrNotUploader rejects attachment removal by anyone but the uploader.
	ErrNotUploader = errors.New("only the uploader may remove an attachment")
)

const handleDir = "uploads/pdfs"

// Service is the document artifact manager: it renders voucher PDFs, locks
// them on final approval and stores supporting attachments. The lock is
// irreversible; that invariant is enforced here, not left to callers.
type Service struct {
	repo  Repository
	root  string
	blobs storage.BlobStore
	log   *zap.Logger
}

func NewService(repo Repository, root string, blobs storage.BlobStore, log *zap.Logger) *Service {
	return &Service{repo: repo, root: root, blobs: blobs, log: log}
}

// Render produces a fresh unsigned voucher PDF and returns its handle. Each
// call produces a new file; previously locked artifacts are never touched.
func (s *Service) Render(ctx context.Context, data VoucherData, preparedBy string) (string, error) {
	pdfBytes, err := renderVoucher(data, preparedBy, "")
	if err != nil {
		return "", err
	}

	prior, err := s.repo.ListArtifacts(ctx, data.ReferenceNumber)
	if err != nil {
		return "", err
	}
	version := len(prior) + 1

	name := fmt.Sprintf("request_%s_%s.pdf", data.ReferenceNumber, uuid.NewString()[:8])
	handle := filepath.ToSlash(filepath.Join(handleDir, name))

	abs := s.abs(handle)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(abs, pdfBytes, 0o644); err != nil {
		return "", err
	}

	snapshot, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	art := &Artifact{
		ReferenceNumber: data.ReferenceNumber,
		Handle:          handle,
		Version:         version,
		PreparedBy:      preparedBy,
		Snapshot:        snapshot,
	}
	if err := s.repo.CreateArtifact(ctx, art); err != nil {
		return "", err
	}

	s.log.Info("voucher rendered",
		zap.String("reference", data.ReferenceNumber),
		zap.String("handle", handle),
		zap.Int("version", version))
	return handle, nil
}

// Lock stamps the signature block into the artifact, flattens it to a
// read-only file and records the signer. Locking an already-locked handle by
// the same signer is a no-op success; a different signer is rejected so the
// recorded signature can never be overwritten.
func (s *Service) Lock(ctx context.Context, handle, signedBy string) (string, error) {
	art, err := s.repo.GetArtifactByHandle(ctx, handle)
	if err != nil {
		return "", err
	}
	if art == nil {
		return "", ErrArtifactNotFound
	}
	if art.Locked {
		if art.SignedBy == signedBy {
			return handle, nil
		}
		return "", ErrArtifactLocked
	}

	abs := s.abs(handle)
	if _, err := os.Stat(abs); err != nil {
		return "", ErrArtifactNotFound
	}

	var data VoucherData
	if err := json.Unmarshal(art.Snapshot, &data); err != nil {
		return "", fmt.Errorf("corrupt artifact snapshot: %w", err)
	}
	pdfBytes, err := renderVoucher(data, art.PreparedBy, signedBy)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(abs, pdfBytes, 0o644); err != nil {
		return "", err
	}

	now := time.Now()
	art.Locked = true
	art.SignedBy = signedBy
	art.SignedAt = &now
	if err := s.repo.UpdateArtifact(ctx, art); err != nil {
		return "", err
	}
	// Flatten: the signed file is never writable again.
	if err := os.Chmod(abs, 0o444); err != nil {
		s.log.Warn("could not mark signed artifact read-only", zap.String("handle", handle), zap.Error(err))
	}

	s.log.Info("voucher signed and locked",
		zap.String("handle", handle),
		zap.String("signed_by", signedBy))
	return handle, nil
}

// Open returns the artifact file for download.
func (s *Service) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	art, err := s.repo.GetArtifactByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	if art == nil {
		return nil, ErrArtifactNotFound
	}
	f, err := os.Open(s.abs(handle))
	if err != nil {
		return nil, ErrArtifactNotFound
	}
	return f, nil
}

// Locked reports whether a handle refers to a signed artifact.
func (s *Service) Locked(ctx context.Context, handle string) (bool, error) {
	art, err := s.repo.GetArtifactByHandle(ctx, handle)
	if err != nil {
		return false, err
	}
	if art == nil {
		return false, ErrArtifactNotFound
	}
	return art.Locked, nil
}

func (s *Service) abs(handle string) string {
	return filepath.Join(s.root, filepath.FromSlash(handle))
}

// AddAttachment stores a supporting document via the configured blob store and
// records its metadata.
func (s *Service) AddAttachment(ctx context.Context, requestID uuid.UUID, fileName, fileType string, size int64, body io.Reader, uploadedBy uuid.UUID) (*Attachment, error) {
	key := fmt.Sprintf("attachments/%s/%s_%s", requestID, uuid.NewString()[:8], sanitizeName(fileName))
	if err := s.blobs.Put(ctx, key, body, fileType); err != nil {
		return nil, err
	}
	att := &Attachment{
		RequestID:  requestID,
		FileName:   fileName,
		StorageKey: key,
		FileType:   fileType,
		FileSize:   size,
		UploadedBy: uploadedBy,
	}
	if err := s.repo.CreateAttachment(ctx, att); err != nil {
		return nil, err
	}
	return att, nil
}

func (s *Service) ListAttachments(ctx context.Context, requestID uuid.UUID) ([]Attachment, error) {
	return s.repo.ListAttachments(ctx, requestID)
}

func (s *Service) OpenAttachment(ctx context.Context, id uuid.UUID) (*Attachment, io.ReadCloser, error) {
	att, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if att == nil {
		return nil, nil, ErrArtifactNotFound
	}
	rc, err := s.blobs.Get(ctx, att.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return att, rc, nil
}

// RemoveAttachment deletes a supporting document. Only the uploader may
// remove their own upload.
func (s *Service) RemoveAttachment(ctx context.Context, id, actorID uuid.UUID) error {
	att, err := s.repo.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	if att == nil {
		return ErrArtifactNotFound
	}
	if att.UploadedBy != actorID {
		return ErrNotUploader
	}
	if err := s.blobs.Delete(ctx, att.StorageKey); err != nil {
		s.log.Warn("attachment blob not removed", zap.String("key", att.StorageKey), zap.Error(err))
	}
	return s.repo.DeleteAttachment(ctx, id)
}

func sanitizeName(name string) string {
	name = filepath.Base(name)
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
}
