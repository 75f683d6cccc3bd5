package repository

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReactionRepository stores one like/dislike row per (profile, target).
type ReactionRepository interface {
	Get(ctx context.Context, profileID uint, target models.Target) (*models.Reaction, error)
	TargetExists(ctx context.Context, target models.Target) (bool, error)
	Toggle(ctx context.Context, profileID uint, target models.Target, like bool) (models.ReactionOutcome, error)
}

type reactionRepository struct {
	db     *gorm.DB
	logger *observability.RepoLogger
}

// NewReactionRepository creates a new reaction repository
func NewReactionRepository(db *gorm.DB) ReactionRepository {
	return &reactionRepository{db: db, logger: observability.NewRepoLogger("reactions")}
}

func (r *reactionRepository) Get(ctx context.Context, profileID uint, target models.Target) (*models.Reaction, error) {
	var reaction models.Reaction
	err := readDB(r.db).WithContext(ctx).
		Where("profile_id = ? AND target_kind = ? AND target_id = ?", profileID, string(target.Kind), target.ID).
		Take(&reaction).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reaction, nil
}

func (r *reactionRepository) TargetExists(ctx context.Context, target models.Target) (bool, error) {
	var model any
	switch target.Kind {
	case models.TargetPost:
		model = &models.Post{}
	case models.TargetComment:
		model = &models.Comment{}
	default:
		return false, fmt.Errorf("unknown target kind %q", target.Kind)
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(model).Where("id = ?", target.ID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Toggle reads the current row and applies the three-state transition in one
// transaction. On postgres the row is locked for the duration.
func (r *reactionRepository) Toggle(ctx context.Context, profileID uint, target models.Target, like bool) (models.ReactionOutcome, error) {
	ctx, span := observability.GetTraceLayer().TraceRepositoryMethod(ctx, "Toggle", "reactions")
	defer span.End()
	defer observability.TrackQuery("toggle", "reactions")()

	var outcome models.ReactionOutcome
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var existing models.Reaction
		var current *models.Reaction
		err := q.Where("profile_id = ? AND target_kind = ? AND target_id = ?", profileID, string(target.Kind), target.ID).
			Take(&existing).Error
		switch {
		case err == nil:
			current = &existing
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		_, outcome = models.NextReactionState(models.StateOf(current), like)
		switch outcome {
		case models.OutcomeCreated:
			return tx.Create(&models.Reaction{
				ProfileID:  profileID,
				TargetKind: target.Kind,
				TargetID:   target.ID,
				IsLike:     like,
			}).Error
		case models.OutcomeDeleted:
			return tx.Delete(&models.Reaction{}, current.ID).Error
		default:
			return tx.Model(current).Update("is_like", like).Error
		}
	})
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrUniqueViolation
		}
		r.logger.LogError(ctx, err, "toggle")
		observability.RecordErrorInContext(ctx, err)
		return "", err
	}
	return outcome, nil
}

// deleteReactions removes every reaction on the given targets.
func deleteReactions(tx *gorm.DB, kind models.TargetKind, ids any) error {
	return tx.Where("target_kind = ? AND target_id IN (?)", string(kind), ids).Delete(&models.Reaction{}).Error
}
