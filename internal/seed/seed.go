package seed

import (
	"fmt"
	"log"

	"inkwell/internal/models"

	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers        int
	NumPosts        int
	CommentsPerPost int
	// ApprovedPercent of comments are stored already moderated.
	ApprovedPercent int
	// UploadDir receives generated WebP covers. Empty skips covers.
	UploadDir  string
	MaxDays    int
	SkipBcrypt bool
	DryRun     bool
	RandSeed   int64
}

// AdminEmail is the seeded author account, created with admin rights.
const AdminEmail = "editor@inkwell.local"

// Summary counts what a run created.
type Summary struct {
	Users    int
	Posts    int
	Comments int
	Pending  int
	Covers   int
}

// Seeder populates a database with demo content.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder creates a seeder for db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.ApprovedPercent == 0 {
		opts.ApprovedPercent = 75
	}
	return &Seeder{db: db, opts: opts, factory: NewFactory(db, opts)}
}

// ClearAll removes every comment, post and user.
func (s *Seeder) ClearAll() error {
	if s.opts.DryRun {
		return nil
	}
	log.Println("clearing existing data")
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Comment{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Run seeds one admin author, NumUsers readers and NumPosts posts, each with
// a comment thread mixing approved and pending comments.
func (s *Seeder) Run() (*Summary, error) {
	sum := &Summary{}

	admin, err := s.factory.CreateUser(func(u *models.User) {
		u.Name = "Inkwell Editor"
		u.Email = AdminEmail
		u.Admin = true
		u.Verified = true
	})
	if err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	sum.Users++

	readers := make([]*models.User, 0, s.opts.NumUsers)
	for range s.opts.NumUsers {
		u, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		readers = append(readers, u)
		sum.Users++
	}

	for range s.opts.NumPosts {
		var photo string
		if s.opts.UploadDir != "" && !s.opts.DryRun {
			photo, err = s.factory.WriteCover(s.opts.UploadDir)
			if err != nil {
				return nil, err
			}
			sum.Covers++
		}

		post, err := s.factory.CreatePost(admin, func(p *models.Post) { p.Photo = photo })
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++

		if len(readers) == 0 {
			continue
		}
		if err := s.seedThread(post, admin, readers, sum); err != nil {
			return nil, err
		}
	}

	log.Printf("seeded %d users, %d posts, %d comments (%d pending), %d covers",
		sum.Users, sum.Posts, sum.Comments, sum.Pending, sum.Covers)
	return sum, nil
}

func (s *Seeder) seedThread(post *models.Post, admin *models.User, readers []*models.User, sum *Summary) error {
	faker := s.factory.faker
	var roots []*models.Comment

	for i := range s.opts.CommentsPerPost {
		author := readers[faker.Number(0, len(readers)-1)]
		approved := faker.Number(1, 100) <= s.opts.ApprovedPercent

		var parent *models.Comment
		// Every third comment answers an approved root, often by the editor.
		if i%3 == 2 && len(roots) > 0 {
			parent = roots[faker.Number(0, len(roots)-1)]
			if faker.Bool() {
				author = admin
			}
		}

		c, err := s.factory.CreateComment(post, author, parent, approved)
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		sum.Comments++
		if !approved {
			sum.Pending++
		}
		if parent == nil && approved {
			roots = append(roots, c)
		}
	}
	return nil
}
