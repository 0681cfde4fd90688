package types

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderInProgress OrderStatus = "in_progress"
	OrderPaused     OrderStatus = "paused"
	OrderStopped    OrderStatus = "stopped"
	OrderCompleted  OrderStatus = "completed"
)

// HaltedStatuses are the statuses of an order whose production is halted but
// resumable. The two names are historical; they carry the same semantics.
var HaltedStatuses = []OrderStatus{OrderPaused, OrderStopped}

// Halted reports whether s is one of the halted statuses.
func (s OrderStatus) Halted() bool {
	return s == OrderPaused || s == OrderStopped
}

type ProductionOrder struct {
	ID                   uuid.UUID   `json:"id"`
	OrderNumber          string      `json:"order_number"`
	ProductName          string      `json:"product_name"`
	Quantity             int         `json:"quantity"`
	ActualQuantity       int         `json:"actual_quantity"`
	Environment          string      `json:"environment"`
	Priority             string      `json:"priority"`
	Status               OrderStatus `json:"status"`
	MachineID            *uuid.UUID  `json:"machine_id,omitempty"`
	OperatorID           *uuid.UUID  `json:"operator_id,omitempty"`
	StartTime            *time.Time  `json:"start_time,omitempty"`
	StopTime             *time.Time  `json:"stop_time,omitempty"`
	CompleteTime         *time.Time  `json:"complete_time,omitempty"`
	EfficiencyPercentage float64     `json:"efficiency_percentage"`
	Archived             bool        `json:"archived"`
	Notes                string      `json:"notes,omitempty"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// OrderSpec is the creation payload. Orders are always created pending.
type OrderSpec struct {
	OrderNumber string `json:"order_number"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Environment string `json:"environment"`
	Priority    string `json:"priority"`
	Notes       string `json:"notes"`
}

// OrderPatch is the allow-listed set of mutable columns. Only non-nil fields
// are applied; Clear* flags write NULL. Anything not listed here cannot be
// changed through the store, which is the whole point.
type OrderPatch struct {
	Status         *OrderStatus
	MachineID      *uuid.UUID
	ClearMachineID bool
	OperatorID     *uuid.UUID
	StartTime      *time.Time
	StopTime       *time.Time
	ClearStopTime  bool
	CompleteTime   *time.Time
	ActualQuantity *int
	Efficiency     *float64
	Archived       *bool
	Notes          *string
}

// Empty reports whether the patch would change nothing.
func (p OrderPatch) Empty() bool {
	return p.Status == nil && p.MachineID == nil && !p.ClearMachineID &&
		p.OperatorID == nil && p.StartTime == nil && p.StopTime == nil &&
		!p.ClearStopTime && p.CompleteTime == nil && p.ActualQuantity == nil &&
		p.Efficiency == nil && p.Archived == nil && p.Notes == nil
}

// OrderFilter narrows list queries. Zero values mean "any".
type OrderFilter struct {
	Statuses    []OrderStatus
	Environment string
	MachineID   *uuid.UUID
	Archived    *bool
}
