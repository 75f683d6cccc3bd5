// Command main runs the database seeder for Agora.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/seed"
)

func main() {
	preset := flag.String("preset", "default", "Seeder preset to apply")
	presetsFile := flag.String("presets", "", "Optional YAML file with extra presets")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randomSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	maxDays := flag.Int("max-days", 60, "Spread post timestamps over this many days")
	fast := flag.Bool("fast", true, "Hash the seed password with the minimum bcrypt cost")
	list := flag.Bool("list", false, "List available presets and exit")
	flag.Parse()

	presets, err := seed.LoadPresets(*presetsFile)
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}
	if *list {
		for _, name := range seed.PresetNames(presets) {
			p := presets[name]
			fmt.Printf("%-10s profiles=%d posts/profile=%d comments/post=%d reaction_rate=%.2f\n",
				name, p.Profiles, p.PostsPerProfile, p.CommentsPerPost, p.ReactionRate)
		}
		return
	}
	p, ok := presets[*preset]
	if !ok {
		log.Fatalf("Unknown preset %q (available: %s)", *preset, strings.Join(seed.PresetNames(presets), ", "))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{Seed: *randomSeed, MaxDays: *maxDays, FastHash: *fast})
	if err != nil {
		log.Fatalf("Failed to create seeder: %v", err)
	}

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(p)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	fmt.Printf("Seeded %d profiles, %d staff, %d follows, %d tags, %d posts, %d comments, %d reactions\n",
		res.Profiles, res.Staff, res.Follows, res.Tags, res.Posts, res.Comments, res.Reactions)
	fmt.Printf("All seeded accounts use the password: %s\n", seed.DefaultPassword)
}
