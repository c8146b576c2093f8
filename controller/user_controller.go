// controller/user_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/service"
	"github.com/skarin/equipwatch/util"
	helper_util "github.com/skarin/equipwatch/util/helper"
)

type UserController struct {
	userService service.IUserService
}

func NewUserController(userService service.IUserService) *UserController {
	return &UserController{
		userService: userService,
	}
}

// RegisterRoutes registers the API routes
func (uc *UserController) RegisterRoutes(r *gin.RouterGroup) {
	users := r.Group("/users")
	{
		users.POST("", uc.CreateUser)
		users.GET("/:id", uc.GetUser)
		users.GET("/engineers", uc.ListEngineers)
	}
}

// CreateUser endpoint
func (uc *UserController) CreateUser(c *gin.Context) {
	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", ew_errors.ErrInvalidUserData)
		return
	}
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	created, err := uc.userService.CreateUser(c, actor, user)
	if err != nil {
		switch err {
		case ew_errors.ErrForbidden:
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		case ew_errors.ErrInvalidUserData:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid user data", err)
		case ew_errors.ErrUserConflict:
			util.RespondWithError(c, http.StatusConflict, "User already exists", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create user", ew_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetUser endpoint
func (uc *UserController) GetUser(c *gin.Context) {
	userID := c.Param("id")
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	user, err := uc.userService.GetUser(c, actor, userID)
	if err != nil {
		switch err {
		case ew_errors.ErrForbidden:
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		case ew_errors.ErrUserNotFound:
			util.RespondWithError(c, http.StatusNotFound, "User not found", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch user", err)
		}
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListEngineers endpoint
func (uc *UserController) ListEngineers(c *gin.Context) {
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	limit, offset, err := helper_util.GetPaginationParams(c)
	if err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
		return
	}
	criteria := model.UserSearchCriteria{
		Name:   c.Query("name"),
		Limit:  limit,
		Offset: offset,
	}

	engineers, err := uc.userService.ListEngineers(c, actor, criteria)
	if err != nil {
		if err == ew_errors.ErrForbidden {
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to list engineers", err)
		}
		return
	}

	c.JSON(http.StatusOK, engineers)
}
