// Package middleware provides authentication, logging, tracing and rate
// limiting middleware for the application.
package middleware

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Auth gate failure messages.
const (
	MsgNoToken     = "Not authorized, No Token"
	MsgTokenFailed = "Not authorized, Token Failed"
	MsgNotAdmin    = "Not authorized as admin"
)

// Fiber locals populated by Authenticate.
const (
	LocalUser   = "user"
	LocalUserID = "userID"
	LocalClaims = "claims"
)

// UserLookup resolves the subject of a verified token.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// Revocations reports whether a token id has been revoked (logged out).
type Revocations interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthGate verifies bearer credentials and resolves them to a user.
type AuthGate struct {
	secret  []byte
	users   UserLookup
	revoked Revocations
}

// NewAuthGate builds a gate for the given signing secret. revoked may be nil.
func NewAuthGate(secret string, users UserLookup, revoked Revocations) *AuthGate {
	return &AuthGate{
		secret:  []byte(secret),
		users:   users,
		revoked: revoked,
	}
}

// ParseToken verifies signature and expiry of an HMAC-signed token.
func ParseToken(secret []byte, tokenString string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

func authFailure(reason, message string) error {
	observability.AuthFailures.WithLabelValues(reason).Inc()
	return models.NewUnauthorizedError(message)
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved user in the request locals.
func (g *AuthGate) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return authFailure("no_token", MsgNoToken)
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			return authFailure("no_token", MsgNoToken)
		}

		claims, err := ParseToken(g.secret, tokenString)
		if err != nil {
			return authFailure("invalid_token", MsgTokenFailed)
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil || userID == 0 {
			return authFailure("invalid_subject", MsgTokenFailed)
		}

		ctx := c.UserContext()
		if claims.ID != "" && g.revoked != nil {
			revoked, err := g.revoked.IsRevoked(ctx, claims.ID)
			if err != nil {
				Logger.WarnContext(ctx, "revocation check failed", slog.String("error", err.Error()))
			} else if revoked {
				return authFailure("revoked", MsgTokenFailed)
			}
		}

		user, err := g.users.GetByID(ctx, uint(userID))
		if err != nil {
			if models.IsNotFound(err) {
				return authFailure("unknown_user", MsgTokenFailed)
			}
			return err
		}

		c.Locals(LocalUser, user)
		c.Locals(LocalUserID, user.ID)
		c.Locals(LocalClaims, claims)
		c.SetUserContext(context.WithValue(ctx, UserIDKey, user.ID))

		return c.Next()
	}
}

// AdminOnly must run after Authenticate.
func (g *AuthGate) AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok || !user.Admin {
			return authFailure("not_admin", MsgNotAdmin)
		}
		return c.Next()
	}
}

// CurrentUser returns the identity resolved by Authenticate.
func CurrentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(LocalUser).(*models.User)
	return user, ok && user != nil
}

// CurrentClaims returns the verified token claims of the request.
func CurrentClaims(c *fiber.Ctx) (*jwt.RegisteredClaims, bool) {
	claims, ok := c.Locals(LocalClaims).(*jwt.RegisteredClaims)
	return claims, ok && claims != nil
}
