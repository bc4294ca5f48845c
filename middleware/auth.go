package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pulsefeed/pulse/utils"
)

const (
	// ContextUserIDKey is the key used to store authenticated user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the username inside Gin context.
	ContextUsernameKey = "username"

	// TokenCookieName carries the JWT for browser clients; API clients use
	// the Authorization header instead.
	TokenCookieName = "pulse_token"
)

// tokenFromRequest extracts the JWT from the Authorization header or, failing
// that, the token cookie.
func tokenFromRequest(ctx *gin.Context) string {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := ctx.Cookie(TokenCookieName); err == nil {
		return strings.TrimSpace(cookie)
	}
	return ""
}

// identify validates the request's token and loads the identity into the
// context. It reports whether the request carries a valid identity.
func identify(ctx *gin.Context) bool {
	token := tokenFromRequest(ctx)
	if token == "" || utils.IsTokenBlacklisted(token) {
		return false
	}
	claims, err := utils.ParseToken(token)
	if err != nil {
		return false
	}
	ctx.Set(ContextUserIDKey, claims.UserID)
	ctx.Set(ContextUsernameKey, claims.Username)
	return true
}

// APIAuthRequired rejects unauthenticated requests with a 401 JSON envelope.
func APIAuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !identify(ctx) {
			utils.Error(ctx, http.StatusUnauthorized, 40101, "authentication required")
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// PageAuthRequired redirects unauthenticated requests to the login page with
// a `next` parameter pointing back at the requested URL.
func PageAuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !identify(ctx) {
			next := ctx.Request.URL.RequestURI()
			ctx.Redirect(http.StatusFound, "/auth/login?next="+url.QueryEscape(next))
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// OptionalAuth loads the identity when a valid token is present and lets the
// request through either way. Public pages use it for viewer-specific bits
// such as the follow/unfollow affordance.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identify(ctx)
		ctx.Next()
	}
}
