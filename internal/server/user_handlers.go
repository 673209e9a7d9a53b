package server

import (
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register godoc
// @Summary Register a user
// @Description Create an account and return the profile with a bearer token
// @Tags users
// @Accept json
// @Produce json
// @Param request body registerRequest true "Registration"
// @Success 201 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /users/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	if !s.flags.On(featureflags.OpenRegistration) {
		return fiber.NewError(fiber.StatusForbidden, "Registration is closed")
	}

	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	profile, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(profile)
}

// Login godoc
// @Summary Log in
// @Tags users
// @Accept json
// @Produce json
// @Param request body loginRequest true "Credentials"
// @Success 200 {object} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	profile, err := s.userService.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// Logout godoc
// @Summary Revoke the current token
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Router /users/logout [post]
func (s *Server) Logout(c *fiber.Ctx) error {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return models.NewUnauthorizedError(middleware.MsgTokenFailed)
	}
	if err := s.userService.Logout(c.UserContext(), claims); err != nil {
		return err
	}
	return c.JSON(MessageResponse{Message: "Logged out successfully"})
}

// GetProfile godoc
// @Summary Current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Profile
// @Failure 401 {object} models.ErrorResponse
// @Router /users/profile [get]
func (s *Server) GetProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}
	profile, err := s.userService.Profile(c.UserContext(), user.ID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateProfile godoc
// @Summary Update name, email or password
// @Description Empty fields keep their stored value. Returns a fresh token.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body updateProfileRequest true "Changes"
// @Success 200 {object} models.Profile
// @Failure 400 {object} models.ErrorResponse
// @Router /users/updateProfile [put]
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.NewValidationError("Invalid request body")
	}

	profile, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   user.ID,
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

// UpdateProfilePicture godoc
// @Summary Replace or clear the avatar
// @Description Without a profilePicture file the current avatar is removed.
// @Tags users
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param profilePicture formData file false "Avatar image"
// @Success 200 {object} models.Profile
// @Failure 500 {object} models.ErrorResponse
// @Router /users/updateProfilePicture [put]
func (s *Server) UpdateProfilePicture(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	fh, err := optionalFile(c, fieldProfilePicture)
	if err != nil {
		return err
	}

	profile, err := s.userService.UpdateAvatar(c.UserContext(), user.ID, fh)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}
