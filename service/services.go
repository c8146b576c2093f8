// service/services.go
package service

import (
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/skarin/equipwatch/audit"
	"github.com/skarin/equipwatch/config"
	"github.com/skarin/equipwatch/dao"
	resolver_dao "github.com/skarin/equipwatch/resolver/dao"
	"github.com/skarin/equipwatch/resolver/engine"
	"github.com/skarin/equipwatch/util"
)

type Services struct {
	Access     IAccessService
	Equipment  IEquipmentService
	Assignment IAssignmentService
	Progress   IProgressService
	User       IUserService
	Resolver   *engine.Resolver
}

func InitializeServices(
	driver neo4j.Driver,
	auditService audit.Service,
	validationUtil *util.ValidationUtil,
	cacheService *util.CacheService,
	notificationSvc *util.NotificationService,
	eventBus *util.EventBus,
) (*Services, error) {
	hierarchyDAO := dao.NewHierarchyDAO(driver)
	grantDAO := dao.NewGrantDAO(driver)
	equipmentDAO := dao.NewEquipmentDAO(driver)
	assignmentDAO := dao.NewAssignmentDAO(driver)
	userDAO := dao.NewUserDAO(driver)
	grantRetrievalDAO := resolver_dao.NewGrantRetrievalDAO(driver)

	resolver := engine.NewResolver(
		hierarchyDAO,
		grantRetrievalDAO,
		config.GetInt("decision.cacheSize"),
		config.GetDuration("decision.cacheTTL"),
	)

	services := &Services{
		Access:     NewAccessService(grantDAO, userDAO, equipmentDAO, hierarchyDAO, resolver, validationUtil, cacheService, notificationSvc, auditService, eventBus),
		Equipment:  NewEquipmentService(equipmentDAO, resolver, validationUtil, cacheService, auditService, eventBus),
		Assignment: NewAssignmentService(assignmentDAO, userDAO, resolver, validationUtil, notificationSvc, auditService, eventBus),
		Progress:   NewProgressService(grantDAO, hierarchyDAO, assignmentDAO, userDAO, hierarchyDAO),
		User:       NewUserService(userDAO, validationUtil, cacheService),
		Resolver:   resolver,
	}

	return services, nil
}
