package seed

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"agora/internal/models"
	"agora/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account logs in with.
const DefaultPassword = "Seed-Password-1"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db           *gorm.DB
	tags         repository.TagRepository
	faker        *gofakeit.Faker
	rnd          *rand.Rand
	maxDays      int
	passwordHash string
	seq          int
}

// NewFactory creates a Factory bound to db. Identical seeds produce identical content.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	password := opts.Password
	if password == "" {
		password = DefaultPassword
	}
	cost := bcrypt.DefaultCost
	if opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}

	return &Factory{
		db:    db,
		tags:  repository.NewTagRepository(db),
		faker: gofakeit.New(seed),
		//nolint:gosec // Weak random number generator is fine for seeding
		rnd:          rand.New(rand.NewSource(seed)),
		maxDays:      maxDays,
		passwordHash: string(hash),
	}, nil
}

// CreateAccount persists an account and, unless staff, its profile.
func (f *Factory) CreateAccount(staff bool, overrides ...func(*models.User)) (*models.User, *models.Profile, error) {
	f.seq++
	base := strings.ToLower(f.faker.Username())
	if len(base) > 20 {
		base = base[:20]
	}
	username := fmt.Sprintf("%s%d", base, f.seq)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: f.passwordHash,
		IsStaff:  staff,
	}
	for _, override := range overrides {
		override(user)
	}

	var profile *models.Profile
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if staff {
			return nil
		}
		profile = &models.Profile{UserID: user.ID, Bio: f.faker.Sentence(12)}
		return tx.Omit("User").Create(profile).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return user, profile, nil
}

// CreateTags gets or creates n distinct tags named after random words.
func (f *Factory) CreateTags(n int) ([]models.Tag, error) {
	seen := make(map[string]bool, n)
	names := make([]string, 0, n)
	for len(names) < n {
		name := strings.ToLower(f.faker.Word())
		if seen[name] {
			name = fmt.Sprintf("%s-%d", name, len(names))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return f.tags.GetOrCreate(context.Background(), names)
}

// BuildPost constructs a post by profile without persisting it.
// CreatedAt is spread over the factory's day range.
func (f *Factory) BuildPost(profile *models.Profile, tags []models.Tag, withImage bool) *models.Post {
	post := &models.Post{
		ProfileID: profile.ID,
		Content:   f.faker.Paragraph(1, 3, 12, "\n"),
		Tags:      tags,
		CreatedAt: f.pastTime(),
	}
	if withImage {
		post.ImageURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", f.faker.UUID())
	}
	return post
}

// CreatePostsBatch persists posts and their tag links in chunks.
func (f *Factory) CreatePostsBatch(posts []*models.Post, batchSize int) error {
	if len(posts) == 0 {
		return nil
	}
	return f.db.Omit("Profile").CreateInBatches(posts, batchSize).Error
}

// CreateComment persists a comment on post. A non-nil parent makes it a reply.
func (f *Factory) CreateComment(profile *models.Profile, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	after := post.CreatedAt
	if parent != nil {
		after = parent.CreatedAt
	}
	comment := &models.Comment{
		ProfileID: profile.ID,
		PostID:    post.ID,
		Content:   f.faker.Sentence(10),
		CreatedAt: f.timeAfter(after),
	}
	if parent != nil {
		comment.ReplyToCommentID = &parent.ID
	}
	if err := f.db.Omit("Profile").Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateFollow persists a follow edge.
func (f *Factory) CreateFollow(follower, following *models.Profile) error {
	return f.db.Create(&models.Follow{FollowerID: follower.ID, FollowingID: following.ID}).Error
}

// CreateReactionsBatch persists reactions in chunks. Callers guarantee one row per (profile, target).
func (f *Factory) CreateReactionsBatch(reactions []*models.Reaction, batchSize int) error {
	if len(reactions) == 0 {
		return nil
	}
	return f.db.CreateInBatches(reactions, batchSize).Error
}

// Chance reports true with probability p.
func (f *Factory) Chance(p float64) bool {
	return p > 0 && f.rnd.Float64() < p
}

// Pick returns up to n distinct items from src.
func Pick[T any](f *Factory, src []T, n int) []T {
	if n >= len(src) {
		n = len(src)
	}
	out := make([]T, 0, n)
	for _, i := range f.rnd.Perm(len(src))[:n] {
		out = append(out, src[i])
	}
	return out
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.rnd.Intn(f.maxDays))*24*time.Hour +
		time.Duration(f.rnd.Intn(24))*time.Hour +
		time.Duration(f.rnd.Intn(60))*time.Minute
	return time.Now().Add(-back)
}

func (f *Factory) timeAfter(t time.Time) time.Time {
	span := time.Since(t)
	if span <= time.Minute {
		return t
	}
	return t.Add(time.Duration(f.rnd.Int63n(int64(span))))
}
