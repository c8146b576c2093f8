// controller/access_controller.go
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
	"github.com/skarin/equipwatch/service"
	"github.com/skarin/equipwatch/util"
)

type AccessController struct {
	accessService service.IAccessService
}

func NewAccessController(accessService service.IAccessService) *AccessController {
	return &AccessController{
		accessService: accessService,
	}
}

// RegisterRoutes registers the API routes
func (ac *AccessController) RegisterRoutes(r *gin.RouterGroup) {
	access := r.Group("/access")
	{
		access.POST("/grants", ac.GrantEquipmentAccess)
		access.DELETE("/grants/:targetID/:equipmentID", ac.RevokeEquipmentAccess)
		access.POST("/hierarchy-grants", ac.GrantHierarchyAccess)
		access.POST("/bulk-grants", ac.BulkGrantByFilter)
		access.GET("/check/:equipmentID", ac.CheckAccess)
		access.GET("/equipment", ac.AccessibleEquipment)
		access.GET("/history/:principalID", ac.GrantHistory)
	}
}

type grantEquipmentRequest struct {
	TargetID     string           `json:"target_id" binding:"required"`
	EquipmentIDs []string         `json:"equipment_ids" binding:"required"`
	AccessType   model.AccessType `json:"access_type" binding:"required"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
}

type grantHierarchyRequest struct {
	ScopeLevel   model.ScopeLevel `json:"scope_level" binding:"required"`
	ScopeID      string           `json:"scope_id" binding:"required"`
	PrincipalIDs []string         `json:"principal_ids" binding:"required"`
	ExpiresAt    *time.Time       `json:"expires_at,omitempty"`
}

type bulkGrantRequest struct {
	TargetID   string            `json:"target_id" binding:"required"`
	Filter     model.GrantFilter `json:"filter" binding:"required"`
	AccessType model.AccessType  `json:"access_type" binding:"required"`
	ExpiresAt  *time.Time        `json:"expires_at,omitempty"`
}

// GrantEquipmentAccess endpoint
func (ac *AccessController) GrantEquipmentAccess(c *gin.Context) {
	var req grantEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid grant data", err)
		return
	}
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	report, err := ac.accessService.GrantEquipmentAccess(c, actor, req.TargetID, req.EquipmentIDs, req.AccessType, req.ExpiresAt)
	if err != nil {
		ac.respondGrantError(c, err, "Failed to grant access")
		return
	}

	c.JSON(http.StatusOK, report)
}

// RevokeEquipmentAccess endpoint
func (ac *AccessController) RevokeEquipmentAccess(c *gin.Context) {
	targetID := c.Param("targetID")
	equipmentID := c.Param("equipmentID")
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	if err := ac.accessService.RevokeEquipmentAccess(c, actor, targetID, equipmentID); err != nil {
		switch err {
		case ew_errors.ErrGrantNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Grant not found", err)
		default:
			ac.respondGrantError(c, err, "Failed to revoke access")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// GrantHierarchyAccess endpoint
func (ac *AccessController) GrantHierarchyAccess(c *gin.Context) {
	var req grantHierarchyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid grant data", err)
		return
	}
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	err := ac.accessService.GrantHierarchyAccess(c, actor, req.ScopeLevel, req.ScopeID, req.PrincipalIDs, req.ExpiresAt)
	if err != nil {
		switch err {
		case ew_errors.ErrInvalidScope:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid scope level", err)
		case ew_errors.ErrEnterpriseNotFound, ew_errors.ErrBranchNotFound,
			ew_errors.ErrWorkshopNotFound, ew_errors.ErrEquipmentTypeNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Scope node not found", err)
		default:
			ac.respondGrantError(c, err, "Failed to grant access")
		}
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkGrantByFilter endpoint
func (ac *AccessController) BulkGrantByFilter(c *gin.Context) {
	var req bulkGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid grant data", err)
		return
	}
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	report, err := ac.accessService.BulkGrantByFilter(c, actor, req.TargetID, req.Filter, req.AccessType, req.ExpiresAt)
	if err != nil {
		ac.respondGrantError(c, err, "Failed to grant access")
		return
	}

	c.JSON(http.StatusOK, report)
}

// CheckAccess endpoint
func (ac *AccessController) CheckAccess(c *gin.Context) {
	equipmentID := c.Param("equipmentID")
	permission := model.Permission(c.DefaultQuery("permission", string(model.PermissionRead)))
	if !model.ValidPermission(permission) {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid permission", ew_errors.ErrInvalidGrantData)
		return
	}
	principal, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	allowed := ac.accessService.CheckAccess(c, principal, equipmentID, permission)
	c.JSON(http.StatusOK, gin.H{
		"equipment_id": equipmentID,
		"permission":   permission,
		"allowed":      allowed,
	})
}

// AccessibleEquipment endpoint
func (ac *AccessController) AccessibleEquipment(c *gin.Context) {
	principal, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	equipmentIDs, err := ac.accessService.AccessibleEquipment(c, principal)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to resolve accessible equipment", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"equipment_ids": equipmentIDs})
}

// GrantHistory endpoint
func (ac *AccessController) GrantHistory(c *gin.Context) {
	principalID := c.Param("principalID")
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	history, err := ac.accessService.GrantHistory(c, actor, principalID)
	if err != nil {
		switch err {
		case ew_errors.ErrForbidden:
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch grant history", err)
		}
		return
	}

	c.JSON(http.StatusOK, history)
}

func (ac *AccessController) respondGrantError(c *gin.Context, err error, fallback string) {
	switch err {
	case ew_errors.ErrForbidden:
		util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
	case ew_errors.ErrTargetNotEngineer:
		util.RespondWithError(c, http.StatusUnprocessableEntity, "Grant target must be an engineer", err)
	case ew_errors.ErrUserNotFound:
		util.RespondWithError(c, http.StatusNotFound, "Target user not found", err)
	case ew_errors.ErrInvalidGrantData:
		util.RespondWithError(c, http.StatusBadRequest, "Invalid grant data", err)
	case ew_errors.ErrDatabaseOperation:
		util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
	default:
		util.RespondWithError(c, http.StatusInternalServerError, fallback, ew_errors.ErrInternalServer)
	}
}
