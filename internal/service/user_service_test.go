package service

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "service-test-secret"

func newUserService(users *userRepoStub, uploads Uploads, remover FileRemover, revoker Revoker) *UserService {
	svc := NewUserService(users, NewTokens(testSecret, time.Hour), uploads, remover, revoker)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func subjectOf(t *testing.T, token string) string {
	t.Helper()
	claims, err := middleware.ParseToken([]byte(testSecret), token)
	require.NoError(t, err)
	return claims.Subject
}

func TestTokens_Issue(t *testing.T) {
	t.Parallel()

	tokens := NewTokens(testSecret, 2*time.Hour)
	fixed := time.Now().Truncate(time.Second)
	tokens.now = func() time.Time { return fixed }

	raw, err := tokens.Issue(17)
	require.NoError(t, err)

	claims, err := middleware.ParseToken([]byte(testSecret), raw)
	require.NoError(t, err)
	assert.Equal(t, "17", claims.Subject)
	assert.Equal(t, TokenIssuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, fixed.Add(2*time.Hour).Unix(), claims.ExpiresAt.Unix())

	_, err = NewTokens("", time.Hour).Issue(1)
	assert.Error(t, err)
}

func TestUserService_Register(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), nil, nil, nil)
		_, err := svc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1"})
		assertValidationError(t, err)
	})

	t.Run("bad email", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), nil, nil, nil)
		_, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "nope", Password: "secret1"})
		assertValidationError(t, err)
	})

	t.Run("short password", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), nil, nil, nil)
		_, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "12345"})
		assertValidationError(t, err)
		assert.Equal(t, "Password length must be at least 6 character.", err.Error())
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()
		users := noopUserRepo()
		users.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: 1, Email: email}, nil
		}
		svc := newUserService(users, nil, nil, nil)
		_, err := svc.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
		assertValidationError(t, err)
		assert.Equal(t, "User have already registered.", err.Error())
	})

	t.Run("hashes password and issues token", func(t *testing.T) {
		t.Parallel()
		var created *models.User
		users := noopUserRepo()
		users.createFn = func(_ context.Context, u *models.User) error {
			u.ID = 12
			created = u
			return nil
		}
		svc := newUserService(users, nil, nil, nil)

		profile, err := svc.Register(ctx, RegisterInput{Name: " Ann ", Email: "Ann@Example.com", Password: "secret1"})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, "Ann", created.Name)
		assert.Equal(t, "ann@example.com", created.Email)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("secret1")))
		assert.Equal(t, uint(12), profile.ID)
		assert.False(t, profile.Admin)
		assert.Equal(t, "12", subjectOf(t, profile.Token))
	})
}

func TestUserService_Login(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	hash := hashed(t, "secret1")
	users := noopUserRepo()
	users.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
		if email != "ann@example.com" {
			return nil, nil
		}
		return &models.User{ID: 5, Name: "Ann", Email: email, Password: hash}, nil
	}
	svc := newUserService(users, nil, nil, nil)

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "secret1"})
		assertNotFoundError(t, err)
		assert.Equal(t, "Email not found", err.Error())
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong-one"})
		assertUnauthorizedError(t, err)
		assert.Equal(t, "Invalid email or password", err.Error())
	})

	t.Run("success", func(t *testing.T) {
		profile, err := svc.Login(ctx, LoginInput{Email: "ann@example.com", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "Ann", profile.Name)
		assert.Equal(t, "5", subjectOf(t, profile.Token))
	})
}

func TestUserService_Profile(t *testing.T) {
	t.Parallel()

	users := noopUserRepo()
	users.getByIDFn = func(_ context.Context, id uint) (*models.User, error) {
		if id == 404 {
			return nil, models.NewNotFoundError("User not found")
		}
		return &models.User{ID: id, Name: "Ann", Admin: true}, nil
	}
	svc := newUserService(users, nil, nil, nil)

	profile, err := svc.Profile(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Ann", profile.Name)
	assert.True(t, profile.Admin)
	assert.Empty(t, profile.Token)

	_, err = svc.Profile(context.Background(), 404)
	assertNotFoundError(t, err)
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	account := func() *userRepoStub {
		users := noopUserRepo()
		users.getAccountFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Name: "Ann", Email: "ann@example.com", Password: "old-hash"}, nil
		}
		return users
	}

	t.Run("short password", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(account(), nil, nil, nil)
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Password: "123"})
		assertValidationError(t, err)
	})

	t.Run("email taken by another user", func(t *testing.T) {
		t.Parallel()
		users := account()
		users.getByEmailFn = func(_ context.Context, email string) (*models.User, error) {
			return &models.User{ID: 2, Email: email}, nil
		}
		svc := newUserService(users, nil, nil, nil)
		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Email: "bob@example.com"})
		assertValidationError(t, err)
	})

	t.Run("empty fields keep prior values", func(t *testing.T) {
		t.Parallel()
		var saved *models.User
		users := account()
		users.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := newUserService(users, nil, nil, nil)

		profile, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Name: "Annie"})
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Annie", saved.Name)
		assert.Equal(t, "ann@example.com", saved.Email)
		assert.Equal(t, "old-hash", saved.Password)
		assert.NotEmpty(t, profile.Token)
	})

	t.Run("new password is hashed", func(t *testing.T) {
		t.Parallel()
		var saved *models.User
		users := account()
		users.updateFn = func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		}
		svc := newUserService(users, nil, nil, nil)

		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Password: "brand-new"})
		require.NoError(t, err)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(saved.Password), []byte("brand-new")))
	})

	t.Run("repo error propagates", func(t *testing.T) {
		t.Parallel()
		repoErr := models.NewInternalError(errors.New("db down"))
		users := account()
		users.updateFn = func(_ context.Context, _ *models.User) error { return repoErr }
		svc := newUserService(users, nil, nil, nil)

		_, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: 1, Name: "Annie"})
		assert.ErrorIs(t, err, repoErr)
	})
}

func TestUserService_UpdateAvatar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	withAvatar := func() *userRepoStub {
		users := noopUserRepo()
		users.getAccountFn = func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Avatar: "old.jpg"}, nil
		}
		return users
	}

	t.Run("upload replaces avatar", func(t *testing.T) {
		t.Parallel()
		remover := &removerSpy{}
		svc := newUserService(withAvatar(), &uploadsStub{name: "new.jpg"}, remover, nil)

		profile, err := svc.UpdateAvatar(ctx, 1, &multipart.FileHeader{})
		require.NoError(t, err)
		assert.Equal(t, "new.jpg", profile.Avatar)
		assert.Equal(t, []string{"old.jpg"}, remover.names())
	})

	t.Run("no upload clears avatar", func(t *testing.T) {
		t.Parallel()
		remover := &removerSpy{}
		svc := newUserService(withAvatar(), &uploadsStub{}, remover, nil)

		profile, err := svc.UpdateAvatar(ctx, 1, nil)
		require.NoError(t, err)
		assert.Empty(t, profile.Avatar)
		assert.Equal(t, []string{"old.jpg"}, remover.names())
	})
}

func TestUserService_Logout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Now()
	claims := &jwt.RegisteredClaims{
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}

	t.Run("revokes until expiry", func(t *testing.T) {
		t.Parallel()
		revoker := &revokerSpy{}
		svc := newUserService(noopUserRepo(), nil, nil, revoker)
		svc.now = func() time.Time { return now }

		require.NoError(t, svc.Logout(ctx, claims))
		assert.Equal(t, "jti-1", revoker.jti)
		assert.InDelta(t, time.Hour.Seconds(), revoker.ttl.Seconds(), 1)
	})

	t.Run("missing jti", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), nil, nil, &revokerSpy{})
		assertUnauthorizedError(t, svc.Logout(ctx, &jwt.RegisteredClaims{}))
	})

	t.Run("revoker failure is internal", func(t *testing.T) {
		t.Parallel()
		svc := newUserService(noopUserRepo(), nil, nil, &revokerSpy{err: errors.New("redis down")})
		svc.now = func() time.Time { return now }
		assertAppErrorCode(t, svc.Logout(ctx, claims), models.CodeInternal)
	})
}
