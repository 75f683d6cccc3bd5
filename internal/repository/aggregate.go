package repository

import (
	"agora/internal/models"

	"gorm.io/gorm"
)

// Engagement counts are correlated sub-selects so joins on tags, profiles or
// comments can never multiply them. COUNT always yields 0 for an empty set.
const (
	postCountsSelect = "posts.*, " +
		"(SELECT COUNT(DISTINCT reactions.profile_id) FROM reactions WHERE reactions.target_kind = ? AND reactions.target_id = posts.id AND reactions.is_like = ?) AS num_likes, " +
		"(SELECT COUNT(DISTINCT reactions.profile_id) FROM reactions WHERE reactions.target_kind = ? AND reactions.target_id = posts.id AND reactions.is_like = ?) AS num_dislikes, " +
		"(SELECT COUNT(DISTINCT comments.id) FROM comments WHERE comments.post_id = posts.id) AS num_comments"

	commentCountsSelect = "comments.*, " +
		"(SELECT COUNT(DISTINCT reactions.profile_id) FROM reactions WHERE reactions.target_kind = ? AND reactions.target_id = comments.id AND reactions.is_like = ?) AS num_likes, " +
		"(SELECT COUNT(DISTINCT reactions.profile_id) FROM reactions WHERE reactions.target_kind = ? AND reactions.target_id = comments.id AND reactions.is_like = ?) AS num_dislikes, " +
		"(SELECT COUNT(DISTINCT replies.id) FROM comments AS replies WHERE replies.reply_to_comment_id = comments.id) AS num_replies"

	profileCountsSelect = "profiles.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.following_id = profiles.id) AS num_followers, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = profiles.id) AS num_followings, " +
		"(SELECT COUNT(*) FROM posts WHERE posts.profile_id = profiles.id) AS num_posts"
)

// Orderings. Every one ends with the primary key so pagination is stable.
const (
	OrderRecentPosts  = "posts.created_at DESC, num_comments ASC, num_likes DESC, num_dislikes ASC, posts.id ASC"
	OrderProfilePosts = "num_comments DESC, posts.created_at DESC, num_likes DESC, num_dislikes ASC, posts.id ASC"
	OrderTagPosts     = "num_comments ASC, posts.created_at DESC, num_likes DESC, num_dislikes ASC, posts.id ASC"
	OrderTopComments  = "num_replies DESC, num_likes DESC, num_dislikes ASC, comments.id ASC"
	OrderReplies      = "num_likes DESC, num_dislikes ASC, comments.id ASC"
	OrderProfiles     = "profiles.id ASC"
)

func annotatePosts(db *gorm.DB) *gorm.DB {
	return db.Select(postCountsSelect,
		string(models.TargetPost), true,
		string(models.TargetPost), false,
	)
}

func annotateComments(db *gorm.DB) *gorm.DB {
	return db.Select(commentCountsSelect,
		string(models.TargetComment), true,
		string(models.TargetComment), false,
	)
}

// annotateProfiles adds follow and post counts, plus is_following for a viewer.
// A zero viewer is anonymous and never follows anyone.
func annotateProfiles(db *gorm.DB, viewerProfileID uint) *gorm.DB {
	if viewerProfileID == 0 {
		return db.Select(profileCountsSelect + ", false AS is_following")
	}
	return db.Select(profileCountsSelect+
		", EXISTS(SELECT 1 FROM follows WHERE follows.follower_id = ? AND follows.following_id = profiles.id) AS is_following",
		viewerProfileID,
	)
}
