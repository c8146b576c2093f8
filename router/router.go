// router/router.go

package router

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skarin/equipwatch/controller"
	"github.com/skarin/equipwatch/middleware"
)

func SetupRouter(
	controllers *controller.Controllers,
	rateLimitRequests int,
	rateLimitDuration time.Duration,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.RateLimiter(rateLimitRequests, rateLimitDuration))
	router.Use(middleware.Auth())

	api := router.Group("/api/v1")

	controllers.Access.RegisterRoutes(api)
	controllers.Equipment.RegisterRoutes(api)
	controllers.Assignment.RegisterRoutes(api)
	controllers.Progress.RegisterRoutes(api)
	controllers.User.RegisterRoutes(api)

	return router
}
