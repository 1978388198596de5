package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"agromarket-backend/internal/shared/response"
	"agromarket-backend/pkg/jwt"
)

// AuthMiddleware validates the Bearer token and puts user_id and role in the gin context
func AuthMiddleware(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			return
		}

		claims, err := jwtManager.ValidateAccessToken(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString("request_id")).Msg("Rejected token")
			response.Unauthorized(c, "invalid token")
			return
		}

		// user_id doubles as the supplier id on supplier routes
		if _, err := uuid.Parse(claims.UserID); err != nil {
			response.Unauthorized(c, "invalid user ID in token")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// RequireRole rejects requests whose role (set by AuthMiddleware) is not in roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "Access denied: "+strings.Join(roles, " or ")+" role required")
	}
}
