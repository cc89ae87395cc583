package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emocare/emocare-backend/internal/logger"
	"github.com/emocare/emocare-backend/internal/policy"
	"github.com/emocare/emocare-backend/internal/requestdata"
	"github.com/emocare/emocare-backend/internal/services"
	"github.com/emocare/emocare-backend/internal/types"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLog, authService: authService}
}

// RequireAuth resolves the principal from the bearer token and installs it on
// the request context. Downstream services take the principal from the
// context they are handed; nothing reads ambient state.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid token", "redirect": policy.LoginTarget})
			return
		}
		ctx, err := am.authService.SetContextFromToken(c.Request.Context(), tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "redirect": policy.LoginTarget})
			return
		}
		c.Request = c.Request.WithContext(ctx)
		rd := requestdata.GetRequestData(ctx)
		if !rd.Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing principal", "redirect": policy.LoginTarget})
			return
		}
		c.Next()
	}
}

// RequireRole gates a route class on the principal's role. Mismatches are
// rerouted to the principal's own role home, per the policy evaluator.
func (am *AuthMiddleware) RequireRole(role types.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		decision := policy.Evaluate(rd, role, "")
		if !decision.Allow {
			am.abort(c, decision)
			return
		}
		c.Next()
	}
}

// RequireTier gates a route class on the principal's subscription tier.
func (am *AuthMiddleware) RequireTier(tier types.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := requestdata.GetRequestData(c.Request.Context())
		decision := policy.Evaluate(rd, "", tier)
		if !decision.Allow {
			am.abort(c, decision)
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) abort(c *gin.Context, decision policy.Decision) {
	status := http.StatusForbidden
	msg := "forbidden"
	if decision.Redirect == policy.LoginTarget {
		status = http.StatusUnauthorized
		msg = "unauthenticated"
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg, "redirect": decision.Redirect})
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return authHeader[7:]
	}
	if qToken := c.Query("token"); qToken != "" {
		return qToken
	}
	return ""
}
