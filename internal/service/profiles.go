package service

import (
	"context"
	"log/slog"

	"bolsas/internal/model"
	"bolsas/internal/repository"
)

// profileLoader memoizes applicant profiles for the duration of one listing
type profileLoader struct {
	users repository.UserRepo
	seen  map[string]*model.Profile
}

func newProfileLoader(users repository.UserRepo) *profileLoader {
	return &profileLoader{users: users, seen: make(map[string]*model.Profile)}
}

func (p *profileLoader) get(ctx context.Context, userID string) *model.Profile {
	if profile, ok := p.seen[userID]; ok {
		return profile
	}
	var profile *model.Profile
	u, err := p.users.GetByID(ctx, userID)
	if err != nil {
		slog.Warn("failed to load applicant", "user_id", userID, "error", err)
	} else if u != nil {
		profile = u.Profile()
	}
	p.seen[userID] = profile
	return profile
}
