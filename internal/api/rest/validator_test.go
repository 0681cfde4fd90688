package rest

import (
	"testing"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_OrderCreate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"valid", `{"order_number":"ORD-1","quantity":100}`, false},
		{"valid full", `{"order_number":"ORD-2","product_name":"Widget","quantity":50,"environment":"press","priority":"high","notes":"rush"}`, false},
		{"missing order_number", `{"quantity":100}`, true},
		{"missing quantity", `{"order_number":"ORD-3"}`, true},
		{"zero quantity", `{"order_number":"ORD-4","quantity":0}`, true},
		{"negative quantity", `{"order_number":"ORD-5","quantity":-5}`, true},
		{"fractional quantity", `{"order_number":"ORD-6","quantity":1.5}`, true},
		{"unknown priority", `{"order_number":"ORD-7","quantity":10,"priority":"asap"}`, true},
		{"unknown field rejected", `{"order_number":"ORD-8","quantity":10,"status":"completed"}`, true},
		{"not json", `quantity=10`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateOrderCreate([]byte(tt.payload))
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidator_MachineCreate(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	assert.NoError(t, v.ValidateMachineCreate([]byte(`{"name":"Press 1","environment":"hall-a","capacity":120}`)))
	assert.ErrorIs(t, v.ValidateMachineCreate([]byte(`{"environment":"hall-a"}`)), types.ErrInvalid)
	assert.ErrorIs(t, v.ValidateMachineCreate([]byte(`{"name":"Press 1","capacity":-1}`)), types.ErrInvalid)
	assert.ErrorIs(t, v.ValidateMachineCreate([]byte(`{"name":"Press 1","status":"in_use"}`)), types.ErrInvalid)
}
