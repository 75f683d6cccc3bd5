// Package bootstrap wires the process-level dependencies shared by the server and tooling commands.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"agora/internal/cache"
	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/seed"
	"agora/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedPreset, when set outside production, seeds an empty database with the named preset.
	SeedPreset  string
	PresetsFile string
}

// InitRuntime connects to DB and Redis, bootstraps the development staff account
// and optionally seeds an empty database.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := EnsureDevStaff(ctx, cfg, service.NewAccountService(repository.NewUserRepository(db))); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development staff account: %w", err)
	}

	if opts.SeedPreset != "" && !cfg.IsProduction() {
		if err := seedIfEmpty(db, opts); err != nil {
			return nil, nil, fmt.Errorf("failed to seed preset %q: %w", opts.SeedPreset, err)
		}
	}

	return db, r, nil
}

// EnsureDevStaff creates or promotes the configured staff account in development.
func EnsureDevStaff(ctx context.Context, cfg *config.Config, accounts *service.AccountService) error {
	if cfg == nil || !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapStaff {
		return nil
	}
	if cfg.DevStaffPassword == "" {
		return fmt.Errorf("DEV_STAFF_PASSWORD must be set when DEV_BOOTSTRAP_STAFF is enabled")
	}

	_, err := accounts.Register(ctx, service.RegisterInput{
		Username: cfg.DevStaffUsername,
		Email:    cfg.DevStaffEmail,
		Password: cfg.DevStaffPassword,
		IsStaff:  true,
	})
	switch {
	case err == nil:
		middleware.Logger.InfoContext(ctx, "development staff account created", slog.String("username", cfg.DevStaffUsername))
		return nil
	case models.HasCode(err, models.CodeConflict):
		if _, err := accounts.SetStaff(ctx, cfg.DevStaffUsername, true); err != nil {
			return err
		}
		middleware.Logger.InfoContext(ctx, "development staff account ensured", slog.String("username", cfg.DevStaffUsername))
		return nil
	default:
		return err
	}
}

func seedIfEmpty(db *gorm.DB, opts Options) error {
	var profiles int64
	if err := db.Model(&models.Profile{}).Count(&profiles).Error; err != nil {
		return err
	}
	if profiles > 0 {
		return nil
	}

	presets, err := seed.LoadPresets(opts.PresetsFile)
	if err != nil {
		return err
	}
	preset, ok := presets[opts.SeedPreset]
	if !ok {
		return fmt.Errorf("unknown preset (available: %s)", strings.Join(seed.PresetNames(presets), ", "))
	}

	s, err := seed.NewSeeder(db, seed.Options{FastHash: true})
	if err != nil {
		return err
	}
	_, err = s.Run(preset)
	return err
}
