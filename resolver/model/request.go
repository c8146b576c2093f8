package model

import (
	"time"

	"github.com/skarin/equipwatch/model"
)

// AccessCheck is one authorization question: can this principal act on
// this equipment with this permission. The caller guarantees a
// verified, active principal; the resolver never validates tokens.
type AccessCheck struct {
	Principal   model.User       `json:"principal"`
	EquipmentID string           `json:"equipment_id"`
	Permission  model.Permission `json:"permission"`
	Timestamp   time.Time        `json:"timestamp"`
}
