// controller/assignment_controller.go
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/service"
	"github.com/skarin/equipwatch/util"
)

type AssignmentController struct {
	assignmentService service.IAssignmentService
}

func NewAssignmentController(assignmentService service.IAssignmentService) *AssignmentController {
	return &AssignmentController{
		assignmentService: assignmentService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AssignmentController) RegisterRoutes(r *gin.RouterGroup) {
	assignments := r.Group("/assignments")
	{
		assignments.POST("", ac.CreateAssignment)
		assignments.GET("/:id", ac.GetAssignment)
		assignments.PATCH("/:id/status", ac.UpdateAssignmentStatus)
		assignments.GET("/engineer/:engineerID", ac.ListByEngineer)
		assignments.GET("/equipment/:equipmentID", ac.ListByEquipment)
	}
}

type statusUpdateRequest struct {
	Status model.AssignmentStatus `json:"status" binding:"required"`
}

// CreateAssignment endpoint
func (ac *AssignmentController) CreateAssignment(c *gin.Context) {
	var assignment model.Assignment
	if err := c.ShouldBindJSON(&assignment); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", ew_errors.ErrInvalidAssignmentData)
		return
	}
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	created, err := ac.assignmentService.CreateAssignment(c, actor, assignment)
	if err != nil {
		switch err {
		case ew_errors.ErrForbidden:
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		case ew_errors.ErrTargetNotEngineer:
			util.RespondWithError(c, http.StatusUnprocessableEntity, "Assignee must be an engineer", err)
		case ew_errors.ErrUserNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Assignee not found", err)
		case ew_errors.ErrEquipmentNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Equipment not found", err)
		case ew_errors.ErrInvalidAssignmentData:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid assignment data", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create assignment", ew_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetAssignment endpoint
func (ac *AssignmentController) GetAssignment(c *gin.Context) {
	assignmentID := c.Param("id")
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	assignment, err := ac.assignmentService.GetAssignment(c, actor, assignmentID)
	if err != nil {
		if err == ew_errors.ErrAssignmentNotFound {
			util.RespondWithError(c, http.StatusNotFound, "Assignment not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch assignment", err)
		}
		return
	}

	c.JSON(http.StatusOK, assignment)
}

// UpdateAssignmentStatus endpoint
func (ac *AssignmentController) UpdateAssignmentStatus(c *gin.Context) {
	assignmentID := c.Param("id")
	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid status data", ew_errors.ErrInvalidAssignmentData)
		return
	}
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	updated, err := ac.assignmentService.UpdateAssignmentStatus(c, actor, assignmentID, req.Status)
	if err != nil {
		switch err {
		case ew_errors.ErrAssignmentNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Assignment not found", err)
		case ew_errors.ErrForbidden:
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		case ew_errors.ErrInvalidStatusTransition:
			util.RespondWithError(c, http.StatusConflict, "Invalid status transition", err)
		case ew_errors.ErrInvalidAssignmentData:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid status data", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to update assignment", ew_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusOK, updated)
}

// ListByEngineer endpoint
func (ac *AssignmentController) ListByEngineer(c *gin.Context) {
	engineerID := c.Param("engineerID")
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	assignments, err := ac.assignmentService.ListAssignmentsForEngineer(c, actor, engineerID)
	if err != nil {
		if err == ew_errors.ErrForbidden {
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to list assignments", err)
		}
		return
	}

	c.JSON(http.StatusOK, assignments)
}

// ListByEquipment endpoint
func (ac *AssignmentController) ListByEquipment(c *gin.Context) {
	equipmentID := c.Param("equipmentID")
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	assignments, err := ac.assignmentService.ListAssignmentsForEquipment(c, actor, equipmentID)
	if err != nil {
		if err == ew_errors.ErrEquipmentNotFound {
			util.RespondWithError(c, http.StatusNotFound, "Equipment not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to list assignments", err)
		}
		return
	}

	c.JSON(http.StatusOK, assignments)
}
