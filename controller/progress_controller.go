// controller/progress_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/service"
	"github.com/skarin/equipwatch/util"
)

type ProgressController struct {
	progressService service.IProgressService
}

func NewProgressController(progressService service.IProgressService) *ProgressController {
	return &ProgressController{
		progressService: progressService,
	}
}

// RegisterRoutes registers the API routes
func (pc *ProgressController) RegisterRoutes(r *gin.RouterGroup) {
	progress := r.Group("/progress")
	{
		progress.GET("/:objectType/:objectID", pc.ObjectProgress)
		progress.POST("/aggregate", pc.HierarchyProgress)
	}
}

type hierarchyProgressRequest struct {
	ObjectType model.ScopeLevel `json:"object_type" binding:"required"`
	ObjectIDs  []string         `json:"object_ids" binding:"required"`
}

// ObjectProgress endpoint
func (pc *ProgressController) ObjectProgress(c *gin.Context) {
	objectType := model.ScopeLevel(c.Param("objectType"))
	objectID := c.Param("objectID")
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	report, err := pc.progressService.ObjectProgress(c, actor, objectType, objectID)
	if err != nil {
		pc.respondProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// HierarchyProgress endpoint
func (pc *ProgressController) HierarchyProgress(c *gin.Context) {
	var req hierarchyProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid progress request", err)
		return
	}
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	aggregate, err := pc.progressService.HierarchyProgress(c, actor, req.ObjectType, req.ObjectIDs)
	if err != nil {
		pc.respondProgressError(c, err)
		return
	}

	c.JSON(http.StatusOK, aggregate)
}

func (pc *ProgressController) respondProgressError(c *gin.Context, err error) {
	switch err {
	case ew_errors.ErrForbidden:
		util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
	case ew_errors.ErrInvalidScope:
		util.RespondWithError(c, http.StatusBadRequest, "Invalid object type", err)
	case ew_errors.ErrEnterpriseNotFound, ew_errors.ErrBranchNotFound,
		ew_errors.ErrWorkshopNotFound, ew_errors.ErrEquipmentTypeNotFound,
		ew_errors.ErrEquipmentNotFound:
		util.RespondWithError(c, http.StatusNotFound, "Object not found", err)
	case ew_errors.ErrDatabaseOperation:
		util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to compute progress", ew_errors.ErrInternalServer)
	}
}
