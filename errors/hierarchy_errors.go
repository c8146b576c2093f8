package errors

import "errors"

var (
	ErrEnterpriseNotFound    = errors.New("enterprise not found")
	ErrBranchNotFound        = errors.New("branch not found")
	ErrWorkshopNotFound      = errors.New("workshop not found")
	ErrEquipmentTypeNotFound = errors.New("equipment type not found")
	ErrEquipmentNotFound     = errors.New("equipment not found")
	ErrEquipmentConflict     = errors.New("equipment conflict")
	ErrInvalidEquipmentData  = errors.New("invalid equipment data")
)
