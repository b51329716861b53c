package service

import (
	"context"
	"fmt"
	"log/slog"

	"bolsas/internal/cache"
	"bolsas/internal/model"
	"bolsas/internal/repository"
	"bolsas/internal/scoring"
)

// EvaluateInput is a reviewer's assessment of an application
type EvaluateInput struct {
	// Answers replace the stored ones by question id; text answers carry the reviewer's weight
	Answers      []model.AnsweredQuestion `json:"answers"`
	ReviewerNote string                   `json:"reviewerNote"`
}

// ReviewService backs the staff review queue
type ReviewService struct {
	applications  repository.ApplicationRepo
	announcements repository.AnnouncementRepo
	users         repository.UserRepo
	maxScores     *AnnouncementService
	ranking       cache.RankingCache
	broadcaster   Broadcaster
}

// NewReviewService creates a new review service
func NewReviewService(
	applications repository.ApplicationRepo,
	announcements repository.AnnouncementRepo,
	users repository.UserRepo,
	maxScores *AnnouncementService,
	ranking cache.RankingCache,
) *ReviewService {
	return &ReviewService{
		applications:  applications,
		announcements: announcements,
		users:         users,
		maxScores:     maxScores,
		ranking:       ranking,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *ReviewService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// Pending lists applications awaiting review. The maximum score is computed
// once per announcement; when it is unavailable the entry carries null.
func (s *ReviewService) Pending(ctx context.Context) ([]*model.PendingApplication, error) {
	apps, err := s.applications.ListByStatus(ctx, model.ApplicationPending)
	if err != nil {
		return nil, fmt.Errorf("list pending applications: %w", err)
	}

	type announcementInfo struct {
		name     string
		maxScore *float64
	}
	infos := make(map[string]announcementInfo)
	profiles := newProfileLoader(s.users)

	entries := make([]*model.PendingApplication, 0, len(apps))
	for _, app := range apps {
		info, ok := infos[app.AnnouncementID]
		if !ok {
			a, err := s.announcements.GetByID(ctx, app.AnnouncementID)
			if err != nil {
				slog.Warn("failed to load announcement", "announcement_id", app.AnnouncementID, "error", err)
			}
			if a != nil {
				info = announcementInfo{name: a.Name, maxScore: s.maxScores.MaximumScoreFor(ctx, a)}
			}
			infos[app.AnnouncementID] = info
		}

		entries = append(entries, &model.PendingApplication{
			Application:      *app,
			AnnouncementName: info.name,
			Applicant:        profiles.get(ctx, app.UserID),
			MaximumScore:     info.maxScore,
		})
	}
	return entries, nil
}

// Get returns an application with its announcement, applicant and maximum score
func (s *ReviewService) Get(ctx context.Context, id string) (*model.ReviewView, error) {
	app, a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.ReviewView{
		Application:  app,
		Announcement: a,
		Applicant:    newProfileLoader(s.users).get(ctx, app.UserID),
		MaximumScore: s.maxScores.MaximumScoreFor(ctx, a),
	}, nil
}

// Evaluate applies the reviewer's answers, re-scores the application and
// marks it evaluated.
func (s *ReviewService) Evaluate(ctx context.Context, actor model.Actor, id string, in EvaluateInput) (*model.Application, error) {
	app, a, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Finalized {
		return nil, ErrAlreadyFinalized
	}

	answers, score, err := scoring.ScoreApplication(mergeAnswers(app.Answers, in.Answers), a.Questions, a.Formula)
	if err != nil {
		slog.Warn("formula evaluation failed", "announcement_id", a.ID, "application_id", app.ID, "error", err)
	}
	app.Answers = answers
	app.FinalScore = score
	app.Status = model.ApplicationEvaluated
	app.ReviewerNote = in.ReviewerNote

	if err := s.applications.Update(ctx, app); err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}
	if err := s.ranking.UpdateScore(ctx, a.ID, app.ID, score); err != nil {
		slog.Warn("failed to update ranking", "application_id", app.ID, "error", err)
	}

	slog.Info("application evaluated", "application_id", app.ID, "reviewer_id", actor.UserID, "score", score)
	notify(s.broadcaster, EventApplicationEvaluated, map[string]interface{}{
		"applicationId":  app.ID,
		"announcementId": a.ID,
		"finalScore":     score,
		"reviewerId":     actor.UserID,
	})
	return app, nil
}

func (s *ReviewService) load(ctx context.Context, id string) (*model.Application, *model.Announcement, error) {
	app, err := s.applications.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if app == nil {
		return nil, nil, ErrNotFound
	}
	a, err := s.announcements.GetByID(ctx, app.AnnouncementID)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, ErrNotFound
	}
	return app, a, nil
}

// mergeAnswers overlays updates on stored answers by question id. Updates for
// questions that were never answered are appended.
func mergeAnswers(stored, updates []model.AnsweredQuestion) []model.AnsweredQuestion {
	merged := make([]model.AnsweredQuestion, len(stored))
	copy(merged, stored)

	index := make(map[string]int, len(merged))
	for i, ans := range merged {
		if _, ok := index[ans.QuestionID]; !ok {
			index[ans.QuestionID] = i
		}
	}
	for _, upd := range updates {
		i, ok := index[upd.QuestionID]
		if !ok {
			index[upd.QuestionID] = len(merged)
			merged = append(merged, upd)
			continue
		}
		if upd.Answer != nil {
			merged[i].Answer = upd.Answer
		}
		merged[i].Weight = upd.Weight
	}
	return merged
}
