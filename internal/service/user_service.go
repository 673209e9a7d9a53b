package service

import (
	"context"
	"mime/multipart"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo repository.UserRepository
	tokens   *Tokens
	uploads  Uploads
	remover  FileRemover
	revoker  Revoker
	hashCost int
	now      func() time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// UpdateProfileInput carries optional replacements; empty fields keep the
// stored value.
type UpdateProfileInput struct {
	UserID   uint
	Name     string
	Email    string
	Password string
}

func NewUserService(
	userRepo repository.UserRepository,
	tokens *Tokens,
	uploads Uploads,
	remover FileRemover,
	revoker Revoker,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		uploads:  uploads,
		remover:  remover,
		revoker:  revoker,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) withToken(user *models.User) (models.Profile, error) {
	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return models.Profile{}, models.NewInternalError(err)
	}
	return models.ProfileOf(user, token), nil
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (models.Profile, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return models.Profile{}, models.NewValidationError("Name, email and password are required")
	}
	if err := validation.ValidateName(name); err != nil {
		return models.Profile{}, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return models.Profile{}, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return models.Profile{}, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return models.Profile{}, err
	}
	if existing != nil {
		return models.Profile{}, models.NewValidationError("User have already registered.")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return models.Profile{}, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return models.Profile{}, err
	}
	return s.withToken(user)
}

func (s *UserService) Login(ctx context.Context, in LoginInput) (models.Profile, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return models.Profile{}, err
	}
	if user == nil {
		return models.Profile{}, models.NewNotFoundError("Email not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return models.Profile{}, models.NewUnauthorizedError("Invalid email or password")
	}
	return s.withToken(user)
}

// Profile returns the public view of the user without a token.
func (s *UserService) Profile(ctx context.Context, userID uint) (models.Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return models.ProfileOf(user, ""), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (models.Profile, error) {
	user, err := s.userRepo.GetAccount(ctx, in.UserID)
	if err != nil {
		return models.Profile{}, err
	}

	if name := strings.TrimSpace(in.Name); name != "" {
		if err := validation.ValidateName(name); err != nil {
			return models.Profile{}, models.NewValidationError(err.Error())
		}
		user.Name = name
	}

	if email := normalizeEmail(in.Email); email != "" && email != user.Email {
		if err := validation.ValidateEmail(email); err != nil {
			return models.Profile{}, models.NewValidationError(err.Error())
		}
		other, err := s.userRepo.GetByEmail(ctx, email)
		if err != nil {
			return models.Profile{}, err
		}
		if other != nil && other.ID != user.ID {
			return models.Profile{}, models.NewValidationError("Email is already in use")
		}
		user.Email = email
	}

	if in.Password != "" {
		if err := validation.ValidatePassword(in.Password); err != nil {
			return models.Profile{}, models.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
		if err != nil {
			return models.Profile{}, models.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return models.Profile{}, err
	}
	return s.withToken(user)
}

// UpdateAvatar replaces the avatar with the uploaded file, or clears it when
// fh is nil. The previous file is removed either way.
func (s *UserService) UpdateAvatar(ctx context.Context, userID uint, fh *multipart.FileHeader) (models.Profile, error) {
	user, err := s.userRepo.GetAccount(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}

	previous := user.Avatar
	user.Avatar = ""
	if fh != nil {
		if s.uploads == nil {
			return models.Profile{}, models.NewValidationError("Uploads are not enabled")
		}
		name, err := s.uploads.Save(fh)
		if err != nil {
			return models.Profile{}, err
		}
		user.Avatar = name
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		removeFile(s.remover, user.Avatar)
		return models.Profile{}, err
	}
	removeFile(s.remover, previous)

	return s.withToken(user)
}

// Logout blacklists the token id until the token would have expired.
func (s *UserService) Logout(ctx context.Context, claims *jwt.RegisteredClaims) error {
	if claims == nil || claims.ID == "" {
		return models.NewUnauthorizedError("Not authorized, Token Failed")
	}
	if s.revoker == nil {
		return nil
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = claims.ExpiresAt.Sub(s.now())
	}
	if ttl <= 0 {
		return nil
	}
	if err := s.revoker.Revoke(ctx, claims.ID, ttl); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
