// Package bootstrap connects the runtime dependencies shared by the server
// and the maintenance commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	defaultRootName  = "Inkwell Root"
	defaultRootEmail = "root@inkwell.local"
)

// InitRuntime connects to the database and redis. The redis client is nil
// when redis is unreachable. In development it also ensures the root editor
// account when DEV_BOOTSTRAP_ROOT is set.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	if err := EnsureDevRoot(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root: %w", err)
	}

	return db, cache.GetClient(), nil
}

// EnsureDevRoot creates or promotes the development root editor. It is a
// no-op outside development or when the bootstrap is disabled.
func EnsureDevRoot(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	name := strings.TrimSpace(cfg.DevRootName)
	if name == "" {
		name = defaultRootName
	}
	email := strings.ToLower(strings.TrimSpace(cfg.DevRootEmail))
	if email == "" {
		email = defaultRootEmail
	}
	if cfg.DevRootPassword == "" {
		return errors.New("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.DevRootPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	var root models.User
	err = db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			root = models.User{
				Name:     name,
				Email:    email,
				Password: string(hash),
				Verified: true,
				Admin:    true,
			}
			return tx.Create(&root).Error
		case err != nil:
			return err
		case root.Admin:
			return nil
		default:
			return tx.Model(&root).Update("admin", true).Error
		}
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(context.Background(), root.ID)
	middleware.Logger.Info("development root editor ensured", "email", email)
	return nil
}
