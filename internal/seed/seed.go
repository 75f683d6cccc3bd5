// Package seed populates the database with fake profiles, follows, tagged posts,
// comments and reactions for development and load testing.
package seed

import (
	"fmt"
	"log/slog"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"

	"gorm.io/gorm"
)

// Options configure the seeder independently of the preset sizes.
type Options struct {
	Seed      int64
	MaxDays   int
	FastHash  bool
	BatchSize int
	Password  string
}

// Result counts what a run created.
type Result struct {
	Staff     int
	Profiles  int
	Follows   int
	Tags      int
	Posts     int
	Comments  int
	Reactions int
}

// Seeder drives a Factory through a Preset.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a seeder over db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	f, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f, opts: opts}, nil
}

// Factory exposes the underlying factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// Run seeds one preset.
func (s *Seeder) Run(p Preset) (Result, error) {
	var res Result
	if err := p.Validate(); err != nil {
		return res, err
	}
	start := time.Now()
	middleware.Logger.Info("seeding started", slog.Int("profiles", p.Profiles), slog.Int("posts_per_profile", p.PostsPerProfile))

	for i := 0; i < p.Staff; i++ {
		if _, _, err := s.factory.CreateAccount(true); err != nil {
			return res, fmt.Errorf("create staff: %w", err)
		}
		res.Staff++
	}

	profiles := make([]*models.Profile, 0, p.Profiles)
	for i := 0; i < p.Profiles; i++ {
		_, profile, err := s.factory.CreateAccount(false)
		if err != nil {
			return res, fmt.Errorf("create profile: %w", err)
		}
		profiles = append(profiles, profile)
	}
	res.Profiles = len(profiles)

	follows, err := s.seedFollows(profiles, p.FollowsPerProfile)
	if err != nil {
		return res, err
	}
	res.Follows = follows

	tags, err := s.factory.CreateTags(p.Tags)
	if err != nil {
		return res, fmt.Errorf("create tags: %w", err)
	}
	res.Tags = len(tags)

	posts, err := s.seedPosts(profiles, tags, p)
	if err != nil {
		return res, err
	}
	res.Posts = len(posts)

	comments, err := s.seedComments(profiles, posts, p)
	if err != nil {
		return res, err
	}
	res.Comments = len(comments)

	reactions, err := s.seedReactions(profiles, posts, comments, p)
	if err != nil {
		return res, err
	}
	res.Reactions = reactions

	middleware.Logger.Info("seeding completed",
		slog.Int("profiles", res.Profiles),
		slog.Int("follows", res.Follows),
		slog.Int("posts", res.Posts),
		slog.Int("comments", res.Comments),
		slog.Int("reactions", res.Reactions),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

func (s *Seeder) seedFollows(profiles []*models.Profile, perProfile int) (int, error) {
	count := 0
	for i, follower := range profiles {
		others := make([]*models.Profile, 0, len(profiles)-1)
		others = append(others, profiles[:i]...)
		others = append(others, profiles[i+1:]...)
		for _, following := range Pick(s.factory, others, perProfile) {
			if err := s.factory.CreateFollow(follower, following); err != nil {
				return count, fmt.Errorf("create follow: %w", err)
			}
			count++
		}
	}
	return count, nil
}

func (s *Seeder) seedPosts(profiles []*models.Profile, tags []models.Tag, p Preset) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(profiles)*p.PostsPerProfile)
	for _, profile := range profiles {
		for i := 0; i < p.PostsPerProfile; i++ {
			posts = append(posts, s.factory.BuildPost(profile, Pick(s.factory, tags, p.TagsPerPost), s.factory.Chance(p.ImageRate)))
		}
	}
	if err := s.factory.CreatePostsBatch(posts, s.opts.BatchSize); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	return posts, nil
}

func (s *Seeder) seedComments(profiles []*models.Profile, posts []*models.Post, p Preset) ([]*models.Comment, error) {
	var comments []*models.Comment
	if len(profiles) == 0 {
		return comments, nil
	}
	for _, post := range posts {
		for _, author := range Pick(s.factory, profiles, p.CommentsPerPost) {
			parent, err := s.factory.CreateComment(author, post, nil)
			if err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			comments = append(comments, parent)

			for _, replier := range Pick(s.factory, profiles, p.RepliesPerComment) {
				reply, err := s.factory.CreateComment(replier, post, parent)
				if err != nil {
					return nil, fmt.Errorf("create reply: %w", err)
				}
				comments = append(comments, reply)
			}
		}
	}
	return comments, nil
}

func (s *Seeder) seedReactions(profiles []*models.Profile, posts []*models.Post, comments []*models.Comment, p Preset) (int, error) {
	targets := make([]models.Target, 0, len(posts)+len(comments))
	for _, post := range posts {
		targets = append(targets, models.Target{Kind: models.TargetPost, ID: post.ID})
	}
	for _, c := range comments {
		targets = append(targets, models.Target{Kind: models.TargetComment, ID: c.ID})
	}

	total := 0
	batch := make([]*models.Reaction, 0, s.opts.BatchSize)
	flush := func() error {
		if err := s.factory.CreateReactionsBatch(batch, s.opts.BatchSize); err != nil {
			return fmt.Errorf("create reactions: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, target := range targets {
		for _, profile := range profiles {
			if !s.factory.Chance(p.ReactionRate) {
				continue
			}
			batch = append(batch, &models.Reaction{
				ProfileID:  profile.ID,
				TargetKind: target.Kind,
				TargetID:   target.ID,
				IsLike:     s.factory.Chance(p.LikeRatio),
			})
			if len(batch) >= s.opts.BatchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

// ClearAll removes every seeded row, children first.
func (s *Seeder) ClearAll() error {
	middleware.Logger.Info("clearing existing data")
	if s.db.Dialector.Name() == "postgres" {
		return s.db.Exec(`TRUNCATE TABLE reactions, comments, post_tags, posts, tags, follows, profiles, users RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range []string{"reactions", "comments", "post_tags", "posts", "tags", "follows", "profiles", "users"} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
