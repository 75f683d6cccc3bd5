package models

import "time"

// TargetKind names the kind of entity a reaction points at.
type TargetKind string

const (
	TargetPost    TargetKind = "post"
	TargetComment TargetKind = "comment"
)

// Valid reports whether k is a known target kind.
func (k TargetKind) Valid() bool {
	return k == TargetPost || k == TargetComment
}

// Target identifies a reactable entity.
type Target struct {
	Kind TargetKind
	ID   uint
}

// Reaction records one profile's like (IsLike=true) or dislike (IsLike=false)
// on one target. There is at most one row per (profile, target).
type Reaction struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ProfileID  uint       `gorm:"not null;uniqueIndex:idx_reaction_actor_target,priority:1" json:"profile_id"`
	TargetKind TargetKind `gorm:"size:16;not null;uniqueIndex:idx_reaction_actor_target,priority:2;index:idx_reaction_target,priority:1" json:"target_kind"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_reaction_actor_target,priority:3;index:idx_reaction_target,priority:2" json:"target_id"`
	IsLike     bool       `gorm:"not null" json:"is_like"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// ReactionState is the state of a (profile, target) pair.
type ReactionState int

const (
	ReactionNone ReactionState = iota
	ReactionLiked
	ReactionDisliked
)

func (s ReactionState) String() string {
	switch s {
	case ReactionLiked:
		return "liked"
	case ReactionDisliked:
		return "disliked"
	default:
		return "none"
	}
}

// StateOf returns the state represented by an existing reaction row, or
// ReactionNone for nil.
func StateOf(r *Reaction) ReactionState {
	switch {
	case r == nil:
		return ReactionNone
	case r.IsLike:
		return ReactionLiked
	default:
		return ReactionDisliked
	}
}

// ReactionOutcome is the storage operation a toggle resolves to.
type ReactionOutcome string

const (
	OutcomeCreated ReactionOutcome = "created"
	OutcomeUpdated ReactionOutcome = "updated"
	OutcomeDeleted ReactionOutcome = "deleted"
)

// NextReactionState applies a like (like=true) or dislike (like=false) request
// to the current state. Repeating the current value clears it, the opposite
// value flips the existing row in place.
func NextReactionState(current ReactionState, like bool) (ReactionState, ReactionOutcome) {
	requested := ReactionDisliked
	if like {
		requested = ReactionLiked
	}
	switch current {
	case ReactionNone:
		return requested, OutcomeCreated
	case requested:
		return ReactionNone, OutcomeDeleted
	default:
		return requested, OutcomeUpdated
	}
}
