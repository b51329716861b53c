package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bolsas/internal/cache"
	"bolsas/internal/model"
	"bolsas/internal/repository"
	"bolsas/internal/scoring"
)

// SubmitApplicationInput is a student's application to an announcement
type SubmitApplicationInput struct {
	AnnouncementID string                    `json:"announcementId"`
	Answers        []model.AnsweredQuestion  `json:"answers"`
	Documents      []model.SubmittedDocument `json:"documents"`
}

// ImportDocumentsInput selects which required document types to pull from
// the student's approved documents.
type ImportDocumentsInput struct {
	AnnouncementID string   `json:"announcementId"`
	Types          []string `json:"types"`
	ImportAll      bool     `json:"importAll"`
}

// ApplicationService handles the student side of applications
type ApplicationService struct {
	applications  repository.ApplicationRepo
	announcements repository.AnnouncementRepo
	documents     repository.DocumentRepo
	ranking       cache.RankingCache
	broadcaster   Broadcaster
	now           func() time.Time
}

// NewApplicationService creates a new application service
func NewApplicationService(
	applications repository.ApplicationRepo,
	announcements repository.AnnouncementRepo,
	documents repository.DocumentRepo,
	ranking cache.RankingCache,
) *ApplicationService {
	return &ApplicationService{
		applications:  applications,
		announcements: announcements,
		documents:     documents,
		ranking:       ranking,
		now:           time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ApplicationService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Available returns announcements currently accepting applications
func (s *ApplicationService) Available(ctx context.Context) ([]*model.Announcement, error) {
	return s.announcements.ListOpen(ctx, s.now())
}

// Submit scores and stores a new application. A formula that cannot be
// evaluated does not block the submission: the score is recorded as 0.
func (s *ApplicationService) Submit(ctx context.Context, actor model.Actor, in SubmitApplicationInput) (*model.Application, error) {
	ve := &ValidationError{}
	if in.AnnouncementID == "" {
		ve.add("announcementId", fieldMessages["required"])
	}
	if len(in.Answers) == 0 {
		ve.add("answers", fieldMessages["required"])
	}
	if len(in.Documents) == 0 {
		ve.add("documents", fieldMessages["required"])
	}
	if err := ve.errOrNil(); err != nil {
		return nil, err
	}

	a, err := s.announcements.GetByID(ctx, in.AnnouncementID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	if a.Finalized || !a.EnrollmentOpen(s.now()) {
		return nil, ErrEnrollmentClosed
	}
	if err := s.checkSubmission(ctx, actor, a, in); err != nil {
		return nil, err
	}

	// text weights are set by reviewers only
	submitted := make([]model.AnsweredQuestion, len(in.Answers))
	for i, ans := range in.Answers {
		ans.Weight = 0
		submitted[i] = ans
	}

	answers, score, err := scoring.ScoreApplication(submitted, a.Questions, a.Formula)
	if err != nil {
		slog.Warn("formula evaluation failed", "announcement_id", a.ID, "user_id", actor.UserID, "error", err)
	}

	app := &model.Application{
		UserID:         actor.UserID,
		AnnouncementID: a.ID,
		SubmittedAt:    s.now(),
		Status:         model.ApplicationPending,
		Documents:      in.Documents,
		Answers:        answers,
		FinalScore:     score,
	}
	if _, err := s.applications.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}

	if err := s.ranking.UpdateScore(ctx, a.ID, app.ID, score); err != nil {
		slog.Warn("failed to update ranking", "application_id", app.ID, "error", err)
	}
	notify(s.broadcaster, EventApplicationSubmitted, map[string]interface{}{
		"applicationId":  app.ID,
		"announcementId": a.ID,
		"finalScore":     score,
	})
	return app, nil
}

// checkSubmission verifies required answers, mandatory documents and that
// every attached document belongs to the applicant.
func (s *ApplicationService) checkSubmission(ctx context.Context, actor model.Actor, a *model.Announcement, in SubmitApplicationInput) error {
	ve := &ValidationError{}

	answered := make(map[string]bool, len(in.Answers))
	for _, ans := range in.Answers {
		if !isBlankAnswer(ans.Answer) {
			answered[ans.QuestionID] = true
		}
	}
	for _, q := range a.Questions {
		if q.Required && !answered[q.Identifier] {
			ve.add("answers."+q.Identifier, fieldMessages["required"])
		}
	}

	attached := make(map[string]bool, len(in.Documents))
	for i, sd := range in.Documents {
		doc, err := s.documents.GetByID(ctx, sd.FileID)
		if err != nil {
			return err
		}
		if doc == nil || doc.UserID != actor.UserID {
			ve.add(fmt.Sprintf("documents[%d]", i), "unknown document")
			continue
		}
		attached[normalizeDocumentType(sd.Type)] = true
	}
	for _, req := range a.RequiredDocuments {
		if req.Mandatory && !attached[normalizeDocumentType(req.Type)] {
			ve.add("documents."+req.Type, "mandatory document missing")
		}
	}
	return ve.errOrNil()
}

func isBlankAnswer(v interface{}) bool {
	switch a := v.(type) {
	case nil:
		return true
	case string:
		return a == ""
	case []interface{}:
		return len(a) == 0
	case []string:
		return len(a) == 0
	}
	return false
}

// Cancel deletes the caller's own application while it is still pending
func (s *ApplicationService) Cancel(ctx context.Context, actor model.Actor, id string) error {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if app == nil {
		return ErrNotFound
	}
	if app.UserID != actor.UserID {
		return ErrForbidden
	}
	if app.Status != model.ApplicationPending {
		return ErrNotCancellable
	}

	if err := s.applications.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	if err := s.ranking.Remove(ctx, app.AnnouncementID, id); err != nil {
		slog.Warn("failed to remove from ranking", "application_id", id, "error", err)
	}
	notify(s.broadcaster, EventApplicationCancelled, map[string]string{
		"applicationId":  id,
		"announcementId": app.AnnouncementID,
	})
	return nil
}

// Mine lists the caller's applications, optionally filtered by status
func (s *ApplicationService) Mine(ctx context.Context, actor model.Actor, status model.ApplicationStatus) ([]*model.Application, error) {
	switch status {
	case "", model.ApplicationPending, model.ApplicationEvaluated, model.ApplicationApproved, model.ApplicationRejected:
	default:
		return nil, invalid("status", fieldMessages["oneof"])
	}
	return s.applications.ListByUser(ctx, actor.UserID, status)
}

// ImportDocuments matches the caller's approved documents against the
// announcement's required types, ignoring case and accents. Missing types are
// only reported for an explicit selection.
func (s *ApplicationService) ImportDocuments(ctx context.Context, actor model.Actor, in ImportDocumentsInput) (*model.DocumentImport, error) {
	a, err := s.announcements.GetByID(ctx, in.AnnouncementID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}

	approved, err := s.documents.ListByUser(ctx, actor.UserID, model.DocumentApproved)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	byType := make(map[string]*model.Document, len(approved))
	for _, doc := range approved {
		key := normalizeDocumentType(doc.Type)
		if _, ok := byType[key]; !ok {
			byType[key] = doc
		}
	}

	requested := in.Types
	if in.ImportAll {
		requested = make([]string, 0, len(a.RequiredDocuments))
		for _, req := range a.RequiredDocuments {
			requested = append(requested, req.Type)
		}
	}

	result := &model.DocumentImport{Imported: []model.ImportedDocument{}, Missing: []string{}}
	for _, t := range requested {
		if doc, ok := byType[normalizeDocumentType(t)]; ok {
			result.Imported = append(result.Imported, model.ImportedDocument{Type: t, ID: doc.ID})
		} else if !in.ImportAll {
			result.Missing = append(result.Missing, t)
		}
	}
	return result, nil
}
