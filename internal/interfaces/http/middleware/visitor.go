package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alexph/woocommerce-crowdstream/internal/domain/tracking"
	"github.com/alexph/woocommerce-crowdstream/internal/infrastructure/auth"
	"github.com/alexph/woocommerce-crowdstream/internal/interfaces/http/dto"
)

// Visitor context keys
const (
	VisitorKey    = "visitor"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "

	// SessionCookieName is the storefront session cookie checked when no
	// Authorization header is present.
	SessionCookieName = "crowdstream_session"
)

// VisitorMiddleware resolves the storefront visitor from the session token.
// A missing or invalid token yields the anonymous visitor; render endpoints
// never reject a request over authentication.
func VisitorMiddleware(tokens *auth.SessionTokenService, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		visitor := tracking.Anonymous()

		if token := extractSessionToken(c); token != "" {
			claims, err := tokens.Validate(token)
			if err != nil {
				log.Debug("session token rejected, treating visitor as anonymous",
					zap.Error(err))
			} else {
				visitor = tracking.Visitor{
					LoggedIn: true,
					UserID:   claims.UserID,
					Admin:    claims.Admin,
				}
			}
		}

		c.Set(VisitorKey, visitor)
		c.Next()
	}
}

// extractSessionToken reads the session token from the Authorization header,
// falling back to the session cookie.
func extractSessionToken(c *gin.Context) string {
	header := c.GetHeader(AuthHeaderKey)
	if strings.HasPrefix(header, BearerPrefix) {
		return strings.TrimPrefix(header, BearerPrefix)
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// GetVisitor returns the visitor resolved for the request, or the anonymous
// visitor when the middleware did not run.
func GetVisitor(c *gin.Context) tracking.Visitor {
	value, exists := c.Get(VisitorKey)
	if !exists {
		return tracking.Anonymous()
	}
	visitor, ok := value.(tracking.Visitor)
	if !ok {
		return tracking.Anonymous()
	}
	return visitor
}

// RequireAdmin rejects requests from visitors that are not logged-in
// administrators. It guards the settings endpoints only; the render
// endpoints stay open.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		visitor := GetVisitor(c)
		if !visitor.LoggedIn {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		if !visitor.Admin {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.NewErrorResponse(dto.ErrCodeForbidden, "Administrator access required"))
			return
		}
		c.Next()
	}
}
