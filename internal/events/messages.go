package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies a committed transition or registry change.
type EventType string

const (
	EventOrderStarted   EventType = "order_started"
	EventOrderPaused    EventType = "order_paused"
	EventOrderResumed   EventType = "order_resumed"
	EventOrderCompleted EventType = "order_completed"
	EventOrderAborted   EventType = "order_aborted"

	EventMachineStatusChanged EventType = "machine_status_changed"
)

// Channels clients can subscribe to. ChannelAll receives everything.
const (
	ChannelOrders   = "orders"
	ChannelMachines = "machines"
	ChannelAll      = "all"
)

// Event is published by the coordinator strictly after commit. Delivery is
// best-effort and never influences the transition's outcome.
type Event struct {
	Type      EventType `json:"type"`
	Channel   string    `json:"channel"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// OrderEventData is the payload of order lifecycle events.
type OrderEventData struct {
	OrderID              uuid.UUID  `json:"order_id"`
	OrderNumber          string     `json:"order_number,omitempty"`
	MachineID            *uuid.UUID `json:"machine_id,omitempty"`
	Status               string     `json:"status"`
	StopID               *uuid.UUID `json:"stop_id,omitempty"`
	Reason               string     `json:"reason,omitempty"`
	DurationMinutes      *int       `json:"duration_minutes,omitempty"`
	ActualQuantity       *int       `json:"actual_quantity,omitempty"`
	EfficiencyPercentage *float64   `json:"efficiency_percentage,omitempty"`
}

// MachineEventData is the payload of machine registry events.
type MachineEventData struct {
	MachineID uuid.UUID `json:"machine_id"`
	Status    string    `json:"status"`
	Previous  string    `json:"previous_status,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType EventType, channel string, data any) Event {
	return Event{
		Type:      eventType,
		Channel:   channel,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func NewOrderEvent(eventType EventType, data OrderEventData) Event {
	return NewEvent(eventType, ChannelOrders, data)
}

func NewMachineEvent(machineID uuid.UUID, status, previous string) Event {
	return NewEvent(EventMachineStatusChanged, ChannelMachines, MachineEventData{
		MachineID: machineID,
		Status:    status,
		Previous:  previous,
	})
}
