// controller/access_controller_test.go
package controller_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/skarin/equipwatch/controller"
	ew_errors "github.com/skarin/equipwatch/errors"
	"github.com/skarin/equipwatch/model"
	mock_service "github.com/skarin/equipwatch/test/service_mock"
)

// setupRouter injects a fixed principal the way the auth middleware
// would after token verification.
func setupRouter(principal model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("principal", principal)
		c.Next()
	})
	return r
}

func TestAccessController(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	admin := model.User{ID: "adm-1", Role: model.RoleAdmin}

	mockAccessService := mock_service.NewMockIAccessService(ctrl)
	accessController := controller.NewAccessController(mockAccessService)
	router := setupRouter(admin)
	api := router.Group("/")
	accessController.RegisterRoutes(api)

	t.Run("GrantEquipmentAccess_Success", func(t *testing.T) {
		mockAccessService.EXPECT().
			GrantEquipmentAccess(gomock.Any(), gomock.Any(), "eng-1", []string{"eq-1", "eq-2"}, model.AccessReadWrite, gomock.Any()).
			Return(model.GrantReport{GrantedCount: 2, TotalRequested: 2}, nil)

		body := strings.NewReader(`{"target_id":"eng-1","equipment_ids":["eq-1","eq-2"],"access_type":"read_write"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/access/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var report model.GrantReport
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
		assert.Equal(t, 2, report.GrantedCount)
	})

	t.Run("GrantEquipmentAccess_Failure_BadBody", func(t *testing.T) {
		body := strings.NewReader(`{"equipment_ids":["eq-1"]}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/access/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("GrantEquipmentAccess_Failure_NotEngineer", func(t *testing.T) {
		mockAccessService.EXPECT().
			GrantEquipmentAccess(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(model.GrantReport{}, ew_errors.ErrTargetNotEngineer)

		body := strings.NewReader(`{"target_id":"op-1","equipment_ids":["eq-1"],"access_type":"read_only"}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/access/grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("RevokeEquipmentAccess_Success", func(t *testing.T) {
		mockAccessService.EXPECT().
			RevokeEquipmentAccess(gomock.Any(), gomock.Any(), "eng-1", "eq-1").
			Return(nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/access/grants/eng-1/eq-1", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("RevokeEquipmentAccess_Failure_NotFound", func(t *testing.T) {
		mockAccessService.EXPECT().
			RevokeEquipmentAccess(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(ew_errors.ErrGrantNotFound)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("DELETE", "/access/grants/eng-1/eq-9", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("GrantHierarchyAccess_Success", func(t *testing.T) {
		mockAccessService.EXPECT().
			GrantHierarchyAccess(gomock.Any(), gomock.Any(), model.ScopeWorkshop, "ws-1", []string{"eng-1"}, gomock.Any()).
			Return(nil)

		body := strings.NewReader(`{"scope_level":"workshop","scope_id":"ws-1","principal_ids":["eng-1"]}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/access/hierarchy-grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("GrantHierarchyAccess_Failure_UnknownNode", func(t *testing.T) {
		mockAccessService.EXPECT().
			GrantHierarchyAccess(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(ew_errors.ErrWorkshopNotFound)

		body := strings.NewReader(`{"scope_level":"workshop","scope_id":"ws-9","principal_ids":["eng-1"]}`)
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/access/hierarchy-grants", body)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("CheckAccess_Success", func(t *testing.T) {
		mockAccessService.EXPECT().
			CheckAccess(gomock.Any(), gomock.Any(), "eq-1", model.PermissionWrite).
			Return(true)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/access/check/eq-1?permission=write", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"allowed":true`)
	})

	t.Run("CheckAccess_Failure_BadPermission", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/access/check/eq-1?permission=own", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("AccessibleEquipment_Success", func(t *testing.T) {
		mockAccessService.EXPECT().
			AccessibleEquipment(gomock.Any(), gomock.Any()).
			Return([]string{"eq-1", "eq-2"}, nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/access/equipment", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "eq-2")
	})
}

func TestAccessController_NoPrincipal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockAccessService := mock_service.NewMockIAccessService(ctrl)
	accessController := controller.NewAccessController(mockAccessService)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	api := router.Group("/")
	accessController.RegisterRoutes(api)

	body := strings.NewReader(`{"target_id":"eng-1","equipment_ids":["eq-1"],"access_type":"read_only"}`)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/access/grants", body)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
