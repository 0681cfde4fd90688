package rest

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"

	"github.com/KevinKickass/FloorCore/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/order-create-v1.json
var orderCreateSchemaJSON string

//go:embed schema/machine-create-v1.json
var machineCreateSchemaJSON string

// Validator checks creation payloads against their JSON schemas before any
// of it reaches the stores.
type Validator struct {
	orderCreate   *jsonschema.Schema
	machineCreate *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compile := func(name, schemaJSON string) (*jsonschema.Schema, error) {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(name, strings.NewReader(schemaJSON)); err != nil {
			return nil, fmt.Errorf("failed to add schema resource %s: %w", name, err)
		}
		schema, err := compiler.Compile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		return schema, nil
	}

	orderCreate, err := compile("order-create-v1.json", orderCreateSchemaJSON)
	if err != nil {
		return nil, err
	}
	machineCreate, err := compile("machine-create-v1.json", machineCreateSchemaJSON)
	if err != nil {
		return nil, err
	}

	return &Validator{orderCreate: orderCreate, machineCreate: machineCreate}, nil
}

func validate(schema *jsonschema.Schema, data []byte) error {
	var payload interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("%w: invalid JSON: %v", types.ErrInvalid, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalid, err)
	}
	return nil
}

func (v *Validator) ValidateOrderCreate(data []byte) error {
	return validate(v.orderCreate, data)
}

func (v *Validator) ValidateMachineCreate(data []byte) error {
	return validate(v.machineCreate, data)
}
