// controller/equipment_controller.go
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

type EquipmentController struct {
	equipmentService service.IEquipmentService
}

func NewEquipmentController(equipmentService service.IEquipmentService) *EquipmentController {
	return &EquipmentController{
		equipmentService: equipmentService,
	}
}

// RegisterRoutes registers the API routes
func (ec *EquipmentController) RegisterRoutes(r *gin.RouterGroup) {
	equipment := r.Group("/equipment")
	{
		equipment.POST("", ec.CreateEquipment)
		equipment.GET("/:id", ec.GetEquipment)
		equipment.POST("/search", ec.SearchEquipment)
	}
}

// CreateEquipment endpoint
func (ec *EquipmentController) CreateEquipment(c *gin.Context) {
	var equipment model.Equipment
	if err := c.ShouldBindJSON(&equipment); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid equipment data", ew_errors.ErrInvalidEquipmentData)
		return
	}
	actor, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	created, err := ec.equipmentService.CreateEquipment(c, actor, equipment)
	if err != nil {
		switch err {
		case ew_errors.ErrForbidden:
			util.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
		case ew_errors.ErrInvalidEquipmentData:
			util.RespondWithError(c, http.StatusBadRequest, "Invalid equipment data", err)
		case ew_errors.ErrEquipmentConflict:
			util.RespondWithError(c, http.StatusConflict, "Equipment already exists", err)
		case ew_errors.ErrWorkshopNotFound:
			util.RespondWithError(c, http.StatusNotFound, "Workshop not found", err)
		case ew_errors.ErrDatabaseOperation:
			util.RespondWithError(c, http.StatusInternalServerError, "Database operation failed", err)
		default:
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to create equipment", ew_errors.ErrInternalServer)
		}
		return
	}

	c.JSON(http.StatusCreated, created)
}

// GetEquipment endpoint
func (ec *EquipmentController) GetEquipment(c *gin.Context) {
	equipmentID := c.Param("id")
	principal, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	equipment, err := ec.equipmentService.GetEquipment(c, principal, equipmentID)
	if err != nil {
		if err == ew_errors.ErrEquipmentNotFound {
			util.RespondWithError(c, http.StatusNotFound, "Equipment not found", err)
		} else {
			util.RespondWithError(c, http.StatusInternalServerError, "Failed to fetch equipment", err)
		}
		return
	}

	c.JSON(http.StatusOK, equipment)
}

// SearchEquipment endpoint
func (ec *EquipmentController) SearchEquipment(c *gin.Context) {
	var criteria model.EquipmentSearchCriteria
	if err := c.ShouldBindJSON(&criteria); err != nil {
		util.RespondWithError(c, http.StatusBadRequest, "Invalid search criteria", err)
		return
	}
	principal, ok := util.GetPrincipalFromContext(c)
	if !ok {
		util.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", ew_errors.ErrUnauthorized)
		return
	}

	if criteria.Limit == 0 {
		limit, offset, err := helper_util.GetPaginationParams(c)
		if err != nil {
			util.RespondWithError(c, http.StatusBadRequest, "Invalid pagination parameters", err)
			return
		}
		criteria.Limit = limit
		criteria.Offset = offset
	}

	equipment, err := ec.equipmentService.ListEquipment(c, principal, criteria)
	if err != nil {
		util.RespondWithError(c, http.StatusInternalServerError, "Failed to search equipment", err)
		return
	}

	c.JSON(http.StatusOK, equipment)
}
