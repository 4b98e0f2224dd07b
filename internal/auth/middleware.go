package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/domain/models"
	"github.com/prasertw/voltbook/internal/repository"
)

// Actor is the authenticated caller with its whitelist role attached.
type Actor struct {
	ID    string
	Email string
	Name  string
	Role  string
}

const actorKey = "voltbook.actor"

// Middleware builds the gin auth chain: verify the bearer token, enforce the
// allowed email domain, and require the caller to be whitelisted.
type Middleware struct {
	verifier TokenVerifier
	users    repository.UserStore
	domain   string
	logger   *zap.Logger
}

// NewMiddleware wires the auth middleware. An empty allowedDomain disables
// the domain check.
func NewMiddleware(verifier TokenVerifier, users repository.UserStore, allowedDomain string, logger *zap.Logger) *Middleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Middleware{
		verifier: verifier,
		users:    users,
		domain:   strings.ToLower(strings.TrimPrefix(allowedDomain, "@")),
		logger:   logger,
	}
}

// Authenticate validates the bearer token and attaches the Actor to the
// request context. Requests without a valid, whitelisted identity never reach
// a handler.
func (m *Middleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		ident, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			m.logger.Warn("token rejected", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		if m.domain != "" && !strings.HasSuffix(strings.ToLower(ident.Email), "@"+m.domain) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "email domain not allowed"})
			return
		}

		account, err := m.lookup(c.Request.Context(), ident)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account is not whitelisted"})
				return
			}
			m.logger.Error("whitelist lookup failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "storage unavailable, please retry"})
			return
		}

		c.Set(actorKey, Actor{
			ID:    ident.Subject,
			Email: ident.Email,
			Name:  ident.Name,
			Role:  account.EffectiveRole(),
		})
		c.Next()
	}
}

// lookup resolves the whitelist entry: by uid first, then by email for
// accounts an admin seeded before the user's first login.
func (m *Middleware) lookup(ctx context.Context, ident *Identity) (*models.UserAccount, error) {
	account, err := m.users.GetByID(ctx, ident.Subject)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return m.users.GetByID(ctx, ident.Email)
}

// RequireAdmin gates admin-only routes. Must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || actor.Role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}
		c.Next()
	}
}

// ActorFrom extracts the authenticated actor set by Authenticate.
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
