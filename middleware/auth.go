// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/skarin/equipwatch/config"
	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
)

// Claims carries the principal identity the access resolver operates
// on. Role comes from the token, not from a directory lookup, so a
// stale token keeps its issued role until expiry.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Auth verifies the bearer token and stores the principal on the
// request context for the controllers.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			c.Abort()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		secret := []byte(config.GetString("auth.secret"))
		parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !parsed.Valid {
			logger.Warn("Token validation failed", zap.Error(err), zap.String("ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		claims, ok := parsed.Claims.(*Claims)
		if !ok || claims.Subject == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		role := model.Role(claims.Role)
		if !model.ValidRole(role) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unknown role"})
			c.Abort()
			return
		}

		c.Set("principal", model.User{
			ID:   claims.Subject,
			Name: claims.Name,
			Role: role,
		})
		c.Next()
	}
}
