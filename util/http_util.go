// util/http_util.go
package util

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	logger "github.com/skarin/equipwatch/logging"
	"github.com/skarin/equipwatch/model"
)

func RespondWithError(c *gin.Context, code int, message string, err error) {
	logger.Error(message,
		zap.Error(err),
		zap.String("path", c.Request.URL.Path),
		zap.String("method", c.Request.Method))
	c.JSON(code, gin.H{"error": message})
}

// GetPrincipalFromContext returns the verified principal the auth
// middleware stored on the request.
func GetPrincipalFromContext(c *gin.Context) (model.User, bool) {
	value, exists := c.Get("principal")
	if !exists {
		return model.User{}, false
	}
	principal, ok := value.(model.User)
	return principal, ok
}
