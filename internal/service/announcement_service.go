package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"bolsas/internal/cache"
	"bolsas/internal/model"
	"bolsas/internal/repository"
	"bolsas/internal/scoring"
)

const (
	defaultRankingLimit = 10
	maxRankingLimit     = 100
	weightSumTolerance  = 0.01
)

var questionIDPattern = regexp.MustCompile(`^Q\d+$`)

// AnnouncementService manages announcements, their maximum score and closing
type AnnouncementService struct {
	announcements repository.AnnouncementRepo
	applications  repository.ApplicationRepo
	maxScores     cache.MaxScoreCache
	ranking       cache.RankingCache
	broadcaster   Broadcaster
	now           func() time.Time
}

// NewAnnouncementService creates a new announcement service
func NewAnnouncementService(
	announcements repository.AnnouncementRepo,
	applications repository.ApplicationRepo,
	maxScores cache.MaxScoreCache,
	ranking cache.RankingCache,
) *AnnouncementService {
	return &AnnouncementService{
		announcements: announcements,
		applications:  applications,
		maxScores:     maxScores,
		ranking:       ranking,
		now:           time.Now,
	}
}

// SetBroadcaster sets the broadcaster for WebSocket events
func (s *AnnouncementService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// List returns announcement summaries, newest first
func (s *AnnouncementService) List(ctx context.Context) ([]*model.AnnouncementSummary, error) {
	return s.announcements.List(ctx)
}

// Get retrieves an announcement by ID
func (s *AnnouncementService) Get(ctx context.Context, id string) (*model.Announcement, error) {
	a, err := s.announcements.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrNotFound
	}
	return a, nil
}

// ListClosed returns announcements whose enrollment ended but were not finalized yet
func (s *AnnouncementService) ListClosed(ctx context.Context) ([]*model.Announcement, error) {
	return s.announcements.ListClosed(ctx, s.now())
}

// Create validates the definition and stores a new announcement
func (s *AnnouncementService) Create(ctx context.Context, a *model.Announcement) (*model.Announcement, error) {
	a.ID = ""
	a.Finalized = false
	if err := PrepareDefinition(a); err != nil {
		return nil, err
	}
	if _, err := s.announcements.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create announcement: %w", err)
	}
	return a, nil
}

// Update replaces the definition of an announcement that is not finalized
func (s *AnnouncementService) Update(ctx context.Context, id string, a *model.Announcement) (*model.Announcement, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.Finalized {
		return nil, ErrAlreadyFinalized
	}

	a.ID = id
	a.Finalized = false
	a.CreatedAt = existing.CreatedAt
	if err := PrepareDefinition(a); err != nil {
		return nil, err
	}
	if err := s.announcements.Update(ctx, a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update announcement: %w", err)
	}
	s.forgetMaximumScore(ctx, id)
	return a, nil
}

// Delete removes an announcement and its cached scores
func (s *AnnouncementService) Delete(ctx context.Context, id string) error {
	if err := s.announcements.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return err
	}
	s.forgetMaximumScore(ctx, id)
	if err := s.ranking.Clear(ctx, id); err != nil {
		slog.Warn("failed to clear ranking", "announcement_id", id, "error", err)
	}
	return nil
}

// ValidateFormula checks a formula being authored against the given question identifiers
func (s *AnnouncementService) ValidateFormula(formula string, identifiers []string) error {
	return scoring.ValidateFormulaSyntax(formula, identifiers)
}

// MaximumScore returns the announcement's maximum possible score, nil when
// it cannot be computed.
func (s *AnnouncementService) MaximumScore(ctx context.Context, id string) (*float64, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.MaximumScoreFor(ctx, a), nil
}

// MaximumScoreFor estimates (or loads from cache) a's maximum score. Failures
// are logged and reported as nil.
func (s *AnnouncementService) MaximumScoreFor(ctx context.Context, a *model.Announcement) *float64 {
	if a.ID != "" {
		cached, err := s.maxScores.Get(ctx, a.ID)
		if err != nil {
			slog.Warn("maximum score cache read failed", "announcement_id", a.ID, "error", err)
		}
		if cached != nil {
			return cached
		}
	}

	v, err := scoring.EstimateMaximumScore(a)
	if err != nil {
		slog.Warn("maximum score unavailable", "announcement_id", a.ID, "formula", a.Formula, "error", err)
		return nil
	}
	if a.ID != "" {
		if err := s.maxScores.Set(ctx, a.ID, v); err != nil {
			slog.Warn("maximum score cache write failed", "announcement_id", a.ID, "error", err)
		}
	}
	return &v
}

func (s *AnnouncementService) forgetMaximumScore(ctx context.Context, id string) {
	if err := s.maxScores.Invalidate(ctx, id); err != nil {
		slog.Warn("maximum score cache invalidation failed", "announcement_id", id, "error", err)
	}
}

// Finalize closes an announcement: evaluated applications are ranked by score,
// the best MaxApproved are approved (all when unset) and the rest rejected.
// Pending applications are left untouched.
func (s *AnnouncementService) Finalize(ctx context.Context, id string) (*model.FinalizeResult, error) {
	a, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.Finalized {
		return nil, ErrAlreadyFinalized
	}

	apps, err := s.applications.ListByAnnouncement(ctx, id, model.ApplicationEvaluated)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	rankApplications(apps)

	limit := len(apps)
	if a.MaxApproved != nil && *a.MaxApproved < limit {
		limit = *a.MaxApproved
		if limit < 0 {
			limit = 0
		}
	}
	result := &model.FinalizeResult{AnnouncementID: id, Approved: []string{}, Rejected: []string{}}
	for i, app := range apps {
		if i < limit {
			result.Approved = append(result.Approved, app.ID)
		} else {
			result.Rejected = append(result.Rejected, app.ID)
		}
	}

	ok, err := s.announcements.MarkFinalized(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark finalized: %w", err)
	}
	if !ok {
		return nil, ErrAlreadyFinalized
	}
	if err := s.applications.SetStatus(ctx, result.Approved, model.ApplicationApproved); err != nil {
		return nil, fmt.Errorf("approve applications: %w", err)
	}
	if err := s.applications.SetStatus(ctx, result.Rejected, model.ApplicationRejected); err != nil {
		return nil, fmt.Errorf("reject applications: %w", err)
	}

	slog.Info("announcement finalized", "announcement_id", id,
		"approved", len(result.Approved), "rejected", len(result.Rejected))
	notify(s.broadcaster, EventAnnouncementFinal, result)
	return result, nil
}

// rankApplications orders by final score descending with non-finite scores
// last; ties keep their submission order.
func rankApplications(apps []*model.Application) {
	sort.SliceStable(apps, func(i, j int) bool {
		si, sj := apps[i].FinalScore, apps[j].FinalScore
		fi, fj := scoring.Finite(si), scoring.Finite(sj)
		if fi != fj {
			return fi
		}
		if !fi {
			return false
		}
		return si > sj
	})
}

// Ranking returns the live score ranking of an announcement
func (s *AnnouncementService) Ranking(ctx context.Context, id string, limit int) ([]cache.RankingEntry, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRankingLimit
	}
	if limit > maxRankingLimit {
		limit = maxRankingLimit
	}
	return s.ranking.GetTop(ctx, id, limit)
}

// assignOptionIDs gives every choice option without an id a generated one
func assignOptionIDs(a *model.Announcement) {
	for i := range a.Questions {
		q := &a.Questions[i]
		for j := range q.ChoiceOptions {
			if strings.TrimSpace(q.ChoiceOptions[j].ID) == "" {
				q.ChoiceOptions[j].ID = uuid.NewString()
			}
		}
	}
}

// PrepareDefinition fills in missing choice option ids and validates a.
func PrepareDefinition(a *model.Announcement) error {
	assignOptionIDs(a)
	return ValidateDefinition(a)
}

// ValidateDefinition checks an announcement's questionnaire, enrollment window
// and formula before it is stored. Field rules live in the model's validate
// tags; the checks below span several fields.
func ValidateDefinition(a *model.Announcement) error {
	ve := &ValidationError{}
	if err := validateStruct(definitions, a); err != nil {
		var tagged *ValidationError
		if !errors.As(err, &tagged) {
			return err
		}
		ve = tagged
	}

	seen := make(map[string]bool, len(a.Questions))
	for i := range a.Questions {
		validateQuestion(ve, fmt.Sprintf("questions[%d]", i), &a.Questions[i], seen)
	}

	if err := scoring.ValidateFormulaSyntax(a.Formula, a.Identifiers()); err != nil {
		ve.add("formula", err.Error())
	}
	return ve.errOrNil()
}

func validateQuestion(ve *ValidationError, field string, q *model.QuestionDefinition, seen map[string]bool) {
	if questionIDPattern.MatchString(q.Identifier) && seen[q.Identifier] {
		ve.add(field+".id", "duplicate identifier "+q.Identifier)
	}
	seen[q.Identifier] = true

	if !q.Subtype.IsChoice() {
		return
	}
	if len(q.ChoiceOptions) == 0 {
		ve.add(field+".choiceOptions", "at least one option is required")
		return
	}
	ids := make(map[string]bool, len(q.ChoiceOptions))
	sum := 0.0
	for j, op := range q.ChoiceOptions {
		if op.ID != "" && ids[op.ID] {
			ve.add(fmt.Sprintf("%s.choiceOptions[%d].id", field, j), "duplicate option id")
		}
		ids[op.ID] = true
		sum += op.Weight
	}
	// NaN and Inf fail the comparison
	if q.Subtype == model.SubtypeMultipleChoice && !(math.Abs(sum-1) <= weightSumTolerance) {
		ve.add(field+".choiceOptions", fmt.Sprintf("option weights must sum to 1 (got %.2f)", sum))
	}
}
