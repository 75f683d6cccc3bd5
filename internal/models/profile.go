package models

import "time"

// MaxBioLength bounds Profile.Bio.
const MaxBioLength = 1000

// Profile is the public identity of a non-staff account. Posts, comments,
// reactions and follow edges all hang off a profile rather than the account.
type Profile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Bio        string    `gorm:"size:1000" json:"bio"`
	PictureURL string    `json:"picture"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Computed at query time, never persisted.
	NumFollowers  int64 `gorm:"->;-:migration" json:"num_of_followers"`
	NumFollowings int64 `gorm:"->;-:migration" json:"num_of_followings"`
	NumPosts      int64 `gorm:"->;-:migration" json:"num_of_posts"`
	IsFollowing   bool  `gorm:"->;-:migration" json:"is_following"`
}

// Follow is a directed edge: FollowerID follows FollowingID.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follow_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follow_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}
