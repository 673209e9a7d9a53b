package service

import (
	"context"
	"errors"
	"mime/multipart"
	"sync"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn         func(context.Context, *models.Comment) error
	getByIDFn        func(context.Context, uint) (*models.Comment, error)
	updateFn         func(context.Context, *models.Comment) error
	setCheckFn       func(context.Context, uint, bool) (*models.Comment, error)
	deleteByIDFn     func(context.Context, uint) (*models.Comment, error)
	deleteByParentFn func(context.Context, uint) (int64, error)
	deleteByPostFn   func(context.Context, uint) (int64, error)
	listApprovedFn   func(context.Context, uint) ([]models.Comment, error)
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) SetCheck(ctx context.Context, id uint, check bool) (*models.Comment, error) {
	return s.setCheckFn(ctx, id, check)
}
func (s *commentRepoStub) DeleteByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.deleteByIDFn(ctx, id)
}
func (s *commentRepoStub) DeleteByParent(ctx context.Context, parentID uint) (int64, error) {
	return s.deleteByParentFn(ctx, parentID)
}
func (s *commentRepoStub) DeleteByPost(ctx context.Context, postID uint) (int64, error) {
	return s.deleteByPostFn(ctx, postID)
}
func (s *commentRepoStub) ListApprovedByPost(ctx context.Context, postID uint) ([]models.Comment, error) {
	return s.listApprovedFn(ctx, postID)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		updateFn:  func(_ context.Context, _ *models.Comment) error { return nil },
		setCheckFn: func(_ context.Context, id uint, check bool) (*models.Comment, error) {
			return &models.Comment{ID: id, Check: check}, nil
		},
		deleteByIDFn:     func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		deleteByParentFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		deleteByPostFn:   func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		listApprovedFn:   func(_ context.Context, _ uint) ([]models.Comment, error) { return nil, nil },
	}
}

// memoryComments backs a commentRepoStub with a slice so that a whole
// create, approve and reply flow can run without a database.
func memoryComments() *commentRepoStub {
	var (
		mu     sync.Mutex
		rows   []models.Comment
		nextID uint
	)
	find := func(id uint) int {
		for i := range rows {
			if rows[i].ID == id {
				return i
			}
		}
		return -1
	}

	stub := noopCommentRepo()
	stub.createFn = func(_ context.Context, c *models.Comment) error {
		mu.Lock()
		defer mu.Unlock()
		nextID++
		c.ID = nextID
		c.CreatedAt = time.Unix(int64(nextID), 0)
		rows = append(rows, *c)
		return nil
	}
	stub.getByIDFn = func(_ context.Context, id uint) (*models.Comment, error) {
		mu.Lock()
		defer mu.Unlock()
		if i := find(id); i >= 0 {
			c := rows[i]
			return &c, nil
		}
		return nil, models.NewNotFoundError("Comment was not found")
	}
	stub.setCheckFn = func(_ context.Context, id uint, check bool) (*models.Comment, error) {
		mu.Lock()
		defer mu.Unlock()
		i := find(id)
		if i < 0 {
			return nil, models.NewNotFoundError("Comment was not found")
		}
		rows[i].Check = check
		c := rows[i]
		return &c, nil
	}
	stub.listApprovedFn = func(_ context.Context, postID uint) ([]models.Comment, error) {
		mu.Lock()
		defer mu.Unlock()
		var out []models.Comment
		for _, c := range rows {
			if c.PostID == postID && c.Check {
				out = append(out, c)
			}
		}
		return out, nil
	}
	return stub
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn       func(context.Context, *models.Post) error
	getBySlugFn    func(context.Context, string) (*models.Post, error)
	slugTakenFn    func(context.Context, string, uint) (bool, error)
	listFn         func(context.Context) ([]models.Post, error)
	updateFn       func(context.Context, *models.Post) error
	deleteBySlugFn func(context.Context, string) (*models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.getBySlugFn(ctx, slug)
}
func (s *postRepoStub) SlugTaken(ctx context.Context, slug string, exceptID uint) (bool, error) {
	return s.slugTakenFn(ctx, slug, exceptID)
}
func (s *postRepoStub) List(ctx context.Context) ([]models.Post, error) {
	return s.listFn(ctx)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) DeleteBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.deleteBySlugFn(ctx, slug)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, _ *models.Post) error { return nil },
		getBySlugFn: func(_ context.Context, slug string) (*models.Post, error) {
			return &models.Post{ID: 1, Slug: slug}, nil
		},
		slugTakenFn: func(_ context.Context, _ string, _ uint) (bool, error) { return false, nil },
		listFn:      func(_ context.Context) ([]models.Post, error) { return nil, nil },
		updateFn:    func(_ context.Context, _ *models.Post) error { return nil },
		deleteBySlugFn: func(_ context.Context, slug string) (*models.Post, error) {
			return &models.Post{ID: 1, Slug: slug}, nil
		},
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn    func(context.Context, uint) (*models.User, error)
	getAccountFn func(context.Context, uint) (*models.User, error)
	getByEmailFn func(context.Context, string) (*models.User, error)
	createFn     func(context.Context, *models.User) error
	updateFn     func(context.Context, *models.User) error
	setAdminFn   func(context.Context, string, bool) (*models.User, error)
	countFn      func(context.Context) (int64, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetAccount(ctx context.Context, id uint) (*models.User, error) {
	return s.getAccountFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) SetAdmin(ctx context.Context, email string, admin bool) (*models.User, error) {
	return s.setAdminFn(ctx, email, admin)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:    func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getAccountFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByEmailFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		createFn:     func(_ context.Context, _ *models.User) error { return nil },
		updateFn:     func(_ context.Context, _ *models.User) error { return nil },
		setAdminFn: func(_ context.Context, email string, admin bool) (*models.User, error) {
			return &models.User{Email: email, Admin: admin}, nil
		},
		countFn: func(_ context.Context) (int64, error) { return 0, nil },
	}
}

type publishedEvent struct {
	postID    uint
	eventType string
	payload   any
}

// recordingFeed captures published events.
type recordingFeed struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (f *recordingFeed) Publish(_ context.Context, postID uint, eventType string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{postID: postID, eventType: eventType, payload: payload})
}

func (f *recordingFeed) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.eventType)
	}
	return out
}

type uploadsStub struct {
	name string
	err  error
}

func (u *uploadsStub) Save(_ *multipart.FileHeader) (string, error) {
	return u.name, u.err
}

// removerSpy records the names passed to Remove.
type removerSpy struct {
	mu      sync.Mutex
	removed []string
}

func (r *removerSpy) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, name)
}

func (r *removerSpy) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.removed...)
}

type revokerSpy struct {
	jti string
	ttl time.Duration
	err error
}

func (r *revokerSpy) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	r.jti = jti
	r.ttl = ttl
	return r.err
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertUnauthorizedError asserts that err is an AppError with code UNAUTHORIZED.
func assertUnauthorizedError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeUnauthorized)
}

func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}

func uintPtr(v uint) *uint { return &v }
