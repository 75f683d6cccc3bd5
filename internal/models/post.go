package models

import (
	"time"
)

// Post is authored by a profile and carries any number of tags.
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProfileID uint      `gorm:"not null;index" json:"profile_id"`
	Profile   *Profile  `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	ImageURL  string    `json:"image"`
	Tags      []Tag     `gorm:"many2many:post_tags;" json:"tags"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed at query time, never persisted.
	NumLikes    int64 `gorm:"->;-:migration" json:"num_likes"`
	NumDislikes int64 `gorm:"->;-:migration" json:"num_dislikes"`
	NumComments int64 `gorm:"->;-:migration" json:"num_comments"`
}

// Comment belongs to a post and optionally replies to another comment on the same post.
type Comment struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ProfileID        uint      `gorm:"not null;index" json:"profile_id"`
	Profile          *Profile  `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
	PostID           uint      `gorm:"not null;index" json:"post_id"`
	Content          string    `gorm:"type:text" json:"content"`
	ReplyToCommentID *uint     `gorm:"index" json:"reply_to_comment"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Computed at query time, never persisted.
	NumLikes    int64 `gorm:"->;-:migration" json:"num_likes"`
	NumDislikes int64 `gorm:"->;-:migration" json:"num_dislikes"`
	NumReplies  int64 `gorm:"->;-:migration" json:"num_replies"`
}

// Tag is a shared label. Names are unique case-insensitively through NameKey.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	NameKey   string    `gorm:"size:100;uniqueIndex;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
