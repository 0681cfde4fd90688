package types

import (
	"time"

	"github.com/google/uuid"
)

type MachineStatus string

const (
	MachineAvailable   MachineStatus = "available"
	MachineInUse       MachineStatus = "in_use"
	MachineMaintenance MachineStatus = "maintenance"
	MachineOffline     MachineStatus = "offline"
)

// ValidMachineStatus reports whether s is one of the known statuses.
func ValidMachineStatus(s MachineStatus) bool {
	switch s {
	case MachineAvailable, MachineInUse, MachineMaintenance, MachineOffline:
		return true
	}
	return false
}

type Machine struct {
	ID          uuid.UUID     `json:"id"`
	Name        string        `json:"name"`
	Environment string        `json:"environment"`
	Capacity    int           `json:"capacity"`
	Status      MachineStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// MachineSpec is the admin-facing creation payload.
type MachineSpec struct {
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Capacity    int    `json:"capacity"`
}
