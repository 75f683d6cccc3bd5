// Package service holds the business rules between HTTP handlers and repositories.
package service

import (
	"context"

	"agora/internal/models"
	"agora/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageParams is a requested window into an ordered listing.
type PageParams struct {
	Limit  int
	Offset int
}

func (p PageParams) normalize(defaultSize int) PageParams {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if p.Limit <= 0 {
		p.Limit = defaultSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// requireProfile resolves the acting user's profile.
func requireProfile(ctx context.Context, profiles repository.ProfileRepository, userID uint) (*models.Profile, error) {
	if userID == 0 {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	profile, err := profiles.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, models.NewProfileRequiredError()
	}
	return profile, nil
}

// viewerProfileID returns the profile ID of the viewer, or 0 for anonymous viewers and staff.
func viewerProfileID(ctx context.Context, profiles repository.ProfileRepository, userID uint) (uint, error) {
	if userID == 0 {
		return 0, nil
	}
	profile, err := profiles.FindByUserID(ctx, userID)
	if err != nil || profile == nil {
		return 0, err
	}
	return profile.ID, nil
}
