// Command seed fills the database with demo posts, readers and comments.
package main

import (
	"context"
	"flag"
	"log"

	"inkwell/internal/bootstrap"
	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of readers to create")
	numPosts := flag.Int("posts", 12, "Number of posts to create")
	comments := flag.Int("comments", 8, "Comments per post")
	approved := flag.Int("approved", 75, "Percentage of comments stored as approved")
	covers := flag.Bool("covers", true, "Generate WebP cover images into UPLOAD_DIR")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Store plain-text passwords (local throwaway databases only)")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, _, err := bootstrap.InitRuntime(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	opts := seed.Options{
		NumUsers:        *numUsers,
		NumPosts:        *numPosts,
		CommentsPerPost: *comments,
		ApprovedPercent: *approved,
		SkipBcrypt:      *fast,
		DryRun:          *dryRun,
	}
	if *covers {
		opts.UploadDir = cfg.UploadDir
	}

	s := seed.NewSeeder(db, opts)
	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	// Cached listings would hide the new posts until they expire.
	cache.InvalidatePosts(context.Background())

	log.Printf("Done. Editor account: %s, all passwords: %s", seed.AdminEmail, seed.DemoPassword)
}
