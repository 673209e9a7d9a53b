// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"time"

	"inkwell/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db     *gorm.DB
	opts   Options
	faker  *gofakeit.Faker
	hash   string
	nextID uint
}

// NewFactory creates a Factory bound to db. With DryRun set nothing is
// written and synthetic ids are handed out instead.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	f := &Factory{db: db, opts: opts, faker: gofakeit.New(opts.RandSeed), nextID: 1000}
	if opts.SkipBcrypt {
		f.hash = DemoPassword
	} else {
		h, _ := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
		f.hash = string(h)
	}
	return f
}

func (f *Factory) persist(v any, id *uint, what string) error {
	if f.opts.DryRun {
		f.nextID++
		*id = f.nextID
		log.Printf("[dry-run] create %s id=%d", what, *id)
		return nil
	}
	return f.db.Create(v).Error
}

// CreateUser persists a reader account. Overrides run before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	first, last := f.faker.FirstName(), f.faker.LastName()
	user := &models.User{
		Name:     first + " " + last,
		Email:    strings.ToLower(fmt.Sprintf("%s.%s.%s@example.com", first, last, f.faker.LetterN(4))),
		Password: f.hash,
		Verified: f.faker.Bool(),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.persist(user, &user.ID, "user"); err != nil {
		return nil, err
	}
	return user, nil
}

// BuildDocument returns a rich-text body of a few headed paragraphs.
func (f *Factory) BuildDocument() models.Document {
	doc := models.EmptyDocument()
	sections := f.faker.Number(1, 3)
	for range sections {
		doc.Content = append(doc.Content,
			models.Node{
				Type:    "heading",
				Attrs:   map[string]any{"level": 2},
				Content: []models.Node{{Type: "text", Text: f.faker.HipsterSentence(4)}},
			},
			models.Node{
				Type: "paragraph",
				Content: []models.Node{
					{Type: "text", Text: f.faker.HipsterSentence(12) + " "},
					{Type: "text", Text: f.faker.HipsterSentence(3), Marks: []models.Mark{{Type: "bold"}}},
				},
			},
		)
	}
	return doc
}

// BuildPost constructs an unsaved post owned by user with a creation time
// spread over the last MaxDays days.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), ".")
	post := &models.Post{
		Title:      title,
		Caption:    f.faker.Sentence(12),
		Slug:       slugify(title) + "-" + uuid.NewString()[:8],
		Body:       f.BuildDocument(),
		Tags:       []string{f.faker.HackerNoun(), f.faker.BuzzWord()},
		Categories: []string{f.faker.RandomString([]string{"engineering", "culture", "product", "travel", "food"})},
		UserID:     user.ID,
	}

	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(rand.IntN(maxDays*24*60)) * time.Minute
	post.CreatedAt = time.Now().Add(-back)
	post.UpdatedAt = post.CreatedAt

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post.
func (f *Factory) CreatePost(user *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(user, overrides...)
	if err := f.persist(post, &post.ID, "post"); err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment on post. A non-nil parent makes it a
// reply addressed to the parent's author.
func (f *Factory) CreateComment(post *models.Post, author *models.User, parent *models.Comment, approved bool) (*models.Comment, error) {
	comment := &models.Comment{
		Desc:   f.faker.Sentence(f.faker.Number(4, 18)),
		PostID: post.ID,
		UserID: author.ID,
		Check:  approved,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
		replyTo := parent.UserID
		comment.ReplyOnUserID = &replyTo
	}
	if err := f.persist(comment, &comment.ID, "comment"); err != nil {
		return nil, err
	}
	return comment, nil
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
