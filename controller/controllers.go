// controller/controllers.go
package controller

import "github.com/skarin/equipwatch/service"

type Controllers struct {
	Access     *AccessController
	Equipment  *EquipmentController
	Assignment *AssignmentController
	Progress   *ProgressController
	User       *UserController
}

func InitializeControllers(services *service.Services) *Controllers {
	return &Controllers{
		Access:     NewAccessController(services.Access),
		Equipment:  NewEquipmentController(services.Equipment),
		Assignment: NewAssignmentController(services.Assignment),
		Progress:   NewProgressController(services.Progress),
		User:       NewUserController(services.User),
	}
}
