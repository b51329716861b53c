package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bolsas/internal/model"
	"bolsas/internal/repository"
)

// UploadInput describes one uploaded file
type UploadInput struct {
	Type        string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// DocumentService stores student documents and records their review
type DocumentService struct {
	documents   repository.DocumentRepo
	files       repository.FileStore
	users       repository.UserRepo
	broadcaster Broadcaster
	maxUpload   int64
	now         func() time.Time
}

// NewDocumentService creates a new document service
func NewDocumentService(documents repository.DocumentRepo, files repository.FileStore, users repository.UserRepo, maxUpload int64) *DocumentService {
	return &DocumentService{
		documents: documents,
		files:     files,
		users:     users,
		maxUpload: maxUpload,
		now:       time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *DocumentService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Upload stores the blob as "<uuid>-<original name>" and records it as submitted
func (s *DocumentService) Upload(ctx context.Context, actor model.Actor, in UploadInput) (*model.Document, error) {
	ve := &ValidationError{}
	if strings.TrimSpace(in.Type) == "" {
		ve.add("type", fieldMessages["required"])
	}
	if in.Content == nil || in.Filename == "" {
		ve.add("file", fieldMessages["required"])
	}
	if s.maxUpload > 0 && in.Size > s.maxUpload {
		ve.add("file", fmt.Sprintf("must not exceed %d bytes", s.maxUpload))
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	name := uuid.NewString() + "-" + filepath.Base(in.Filename)
	fileID, err := s.files.Upload(ctx, name, in.ContentType, in.Content)
	if err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	doc := &model.Document{
		UserID:     actor.UserID,
		Type:       strings.TrimSpace(in.Type),
		Status:     model.DocumentSubmitted,
		UploadedAt: s.now(),
		Filename:   name,
		FileSize:   in.Size,
		FileID:     fileID,
	}
	if _, err := s.documents.Create(ctx, doc); err != nil {
		if delErr := s.files.Delete(ctx, fileID); delErr != nil {
			err = fmt.Errorf("%w (orphaned file %s: %v)", err, fileID, delErr)
		}
		return nil, fmt.Errorf("create document: %w", err)
	}

	notify(s.broadcaster, EventDocumentSubmitted, map[string]string{
		"documentId": doc.ID,
		"userId":     doc.UserID,
		"type":       doc.Type,
	})
	return doc, nil
}

// ListForUser lists a user's documents; students only see their own
func (s *DocumentService) ListForUser(ctx context.Context, actor model.Actor, userID string) ([]*model.Document, error) {
	if userID == "" {
		userID = actor.UserID
	}
	if userID != actor.UserID && !actor.Role.IsReviewer() {
		return nil, ErrForbidden
	}
	return s.documents.ListByUser(ctx, userID, "")
}

// Submitted lists documents awaiting review together with their owners
func (s *DocumentService) Submitted(ctx context.Context) ([]*model.Document, error) {
	docs, err := s.documents.ListByStatus(ctx, model.DocumentSubmitted)
	if err != nil {
		return nil, err
	}
	profiles := newProfileLoader(s.users)
	for _, doc := range docs {
		doc.Applicant = profiles.get(ctx, doc.UserID)
	}
	return docs, nil
}

// Open streams a document's content to its owner or a reviewer. The caller
// must close the returned reader.
func (s *DocumentService) Open(ctx context.Context, actor model.Actor, id string) (io.ReadCloser, *repository.FileInfo, error) {
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil {
		return nil, nil, ErrNotFound
	}
	if doc.UserID != actor.UserID && !actor.Role.IsReviewer() {
		return nil, nil, ErrForbidden
	}

	rc, info, err := s.files.Open(ctx, doc.FileID)
	if err != nil {
		return nil, nil, err
	}
	if rc == nil {
		return nil, nil, ErrNotFound
	}
	if info.Name == "" {
		info.Name = doc.Filename
	}
	return rc, info, nil
}

// Review approves or rejects a document on behalf of a reviewer
func (s *DocumentService) Review(ctx context.Context, actor model.Actor, id string, status model.DocumentStatus) (*model.Document, error) {
	if status != model.DocumentApproved && status != model.DocumentRejected {
		return nil, invalid("status", fieldMessages["oneof"])
	}
	doc, err := s.documents.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}

	now := s.now()
	review := model.DocumentReview{ReviewedBy: actor.UserID, ReviewedAt: &now}
	if err := s.documents.SetReview(ctx, id, status, review); err != nil {
		return nil, fmt.Errorf("record review: %w", err)
	}
	doc.Status = status
	doc.Review = review

	notify(s.broadcaster, EventDocumentReviewed, map[string]string{
		"documentId": doc.ID,
		"userId":     doc.UserID,
		"status":     string(status),
	})
	return doc, nil
}
