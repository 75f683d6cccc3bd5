package service

import (
	"context"
	"errors"
	"log/slog"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

// ReactionService applies like/dislike toggles to posts and comments.
type ReactionService struct {
	reactions repository.ReactionRepository
	profiles  repository.ProfileRepository
}

func NewReactionService(reactions repository.ReactionRepository, profiles repository.ProfileRepository) *ReactionService {
	return &ReactionService{reactions: reactions, profiles: profiles}
}

// Toggle moves the actor's reaction on target through none, liked and disliked.
// A lost insert race is retried once before surfacing as CONFLICT.
func (s *ReactionService) Toggle(ctx context.Context, userID uint, target models.Target, like bool) (models.ReactionOutcome, error) {
	if !target.Kind.Valid() {
		return "", models.NewValidationError("Unknown reaction target")
	}

	profile, err := requireProfile(ctx, s.profiles, userID)
	if err != nil {
		return "", err
	}

	exists, err := s.reactions.TargetExists(ctx, target)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	if !exists {
		return "", models.NewNotFoundError(targetResource(target.Kind), target.ID)
	}

	ctx, span := observability.GetTraceLayer().TraceServiceToRepository(ctx, "reactions", "Toggle")
	defer span.End()

	outcome, err := s.reactions.Toggle(ctx, profile.ID, target, like)
	if errors.Is(err, repository.ErrUniqueViolation) {
		outcome, err = s.reactions.Toggle(ctx, profile.ID, target, like)
	}
	if err != nil {
		observability.RecordErrorInContext(ctx, err)
		if errors.Is(err, repository.ErrUniqueViolation) {
			observability.ReactionConflicts.WithLabelValues(string(target.Kind)).Inc()
			return "", models.NewConflictError("Reaction changed concurrently, please retry", err)
		}
		return "", models.NewInternalError(err)
	}

	observability.RecordReactionToggle(string(target.Kind), string(outcome))
	middleware.Logger.InfoContext(ctx, "reaction toggled",
		slog.String("target_kind", string(target.Kind)),
		slog.Uint64("target_id", uint64(target.ID)),
		slog.Uint64("profile_id", uint64(profile.ID)),
		slog.Bool("like", like),
		slog.String("outcome", string(outcome)),
	)
	return outcome, nil
}

func targetResource(kind models.TargetKind) string {
	if kind == models.TargetComment {
		return "Comment"
	}
	return "Post"
}
