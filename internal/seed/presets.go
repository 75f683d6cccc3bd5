package seed

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Preset sizes one seeding run.
type Preset struct {
	Profiles          int     `yaml:"profiles"`
	Staff             int     `yaml:"staff"`
	FollowsPerProfile int     `yaml:"follows_per_profile"`
	Tags              int     `yaml:"tags"`
	PostsPerProfile   int     `yaml:"posts_per_profile"`
	TagsPerPost       int     `yaml:"tags_per_post"`
	CommentsPerPost   int     `yaml:"comments_per_post"`
	RepliesPerComment int     `yaml:"replies_per_comment"`
	ReactionRate      float64 `yaml:"reaction_rate"`
	LikeRatio         float64 `yaml:"like_ratio"`
	ImageRate         float64 `yaml:"image_rate"`
}

// DefaultPresets are available without a presets file.
var DefaultPresets = map[string]Preset{
	"minimal": {
		Profiles:          5,
		Staff:             1,
		FollowsPerProfile: 2,
		Tags:              5,
		PostsPerProfile:   2,
		TagsPerPost:       1,
		CommentsPerPost:   1,
		RepliesPerComment: 1,
		ReactionRate:      0.5,
		LikeRatio:         0.7,
	},
	"default": {
		Profiles:          50,
		Staff:             2,
		FollowsPerProfile: 8,
		Tags:              25,
		PostsPerProfile:   4,
		TagsPerPost:       3,
		CommentsPerPost:   3,
		RepliesPerComment: 2,
		ReactionRate:      0.3,
		LikeRatio:         0.75,
		ImageRate:         0.3,
	},
	"busy": {
		Profiles:          300,
		Staff:             3,
		FollowsPerProfile: 25,
		Tags:              80,
		PostsPerProfile:   10,
		TagsPerPost:       4,
		CommentsPerPost:   6,
		RepliesPerComment: 3,
		ReactionRate:      0.2,
		LikeRatio:         0.8,
		ImageRate:         0.4,
	},
}

// Validate rejects sizes the seeder cannot satisfy.
func (p Preset) Validate() error {
	switch {
	case p.Profiles < 0 || p.Staff < 0 || p.Tags < 0:
		return fmt.Errorf("preset counts must not be negative")
	case p.FollowsPerProfile < 0 || p.PostsPerProfile < 0 || p.TagsPerPost < 0:
		return fmt.Errorf("preset counts must not be negative")
	case p.CommentsPerPost < 0 || p.RepliesPerComment < 0:
		return fmt.Errorf("preset counts must not be negative")
	case p.ReactionRate < 0 || p.ReactionRate > 1:
		return fmt.Errorf("reaction_rate must be between 0 and 1")
	case p.LikeRatio < 0 || p.LikeRatio > 1:
		return fmt.Errorf("like_ratio must be between 0 and 1")
	case p.ImageRate < 0 || p.ImageRate > 1:
		return fmt.Errorf("image_rate must be between 0 and 1")
	case p.TagsPerPost > p.Tags:
		return fmt.Errorf("tags_per_post (%d) exceeds tags (%d)", p.TagsPerPost, p.Tags)
	}
	return nil
}

// LoadPresets returns the built-in presets overlaid with those in the YAML file at path.
// An empty path returns the built-ins.
func LoadPresets(path string) (map[string]Preset, error) {
	presets := make(map[string]Preset, len(DefaultPresets))
	for name, p := range DefaultPresets {
		presets[name] = p
	}
	if path == "" {
		return presets, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	var file struct {
		Presets map[string]Preset `yaml:"presets"`
	}
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	for name, p := range file.Presets {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		presets[name] = p
	}
	return presets, nil
}

// PresetNames lists preset names in a stable order.
func PresetNames(presets map[string]Preset) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
