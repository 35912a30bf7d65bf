// Package item builds queue item payloads accepted by the run engine manager.
//
// Items are pure data shaping: a plan, instruction or function descriptor
// serialized into the wire "item" mapping. The manager owns validation and
// scheduling.
package item

import (
	"fmt"

	"github.com/google/uuid"
)

// Item types accepted by the manager.
const (
	TypePlan        = "plan"
	TypeInstruction = "instruction"
	TypeFunction    = "function"
)

// Item is one queue item payload.
type Item struct {
	itemType string
	name     string
	args     []any
	kwargs   map[string]any
	meta     map[string]any
	itemUID  string
}

// NewPlan creates a plan item.
func NewPlan(name string, args ...any) *Item {
	return &Item{itemType: TypePlan, name: name, args: args}
}

// NewInstruction creates an instruction item.
func NewInstruction(name string, args ...any) *Item {
	return &Item{itemType: TypeInstruction, name: name, args: args}
}

// NewFunction creates a function item.
func NewFunction(name string, args ...any) *Item {
	return &Item{itemType: TypeFunction, name: name, args: args}
}

// WithKwargs sets keyword arguments.
func (i *Item) WithKwargs(kwargs map[string]any) *Item {
	i.kwargs = kwargs
	return i
}

// WithMeta sets item metadata.
func (i *Item) WithMeta(meta map[string]any) *Item {
	i.meta = meta
	return i
}

// WithNewUID assigns a fresh item UID. The manager assigns one otherwise.
func (i *Item) WithNewUID() *Item {
	i.itemUID = uuid.NewString()
	return i
}

// ItemType returns the item type.
func (i *Item) ItemType() string { return i.itemType }

// Name returns the plan/instruction/function name.
func (i *Item) Name() string { return i.name }

// UID returns the item UID, empty if unassigned.
func (i *Item) UID() string { return i.itemUID }

// Validate checks the payload shape before it is sent.
func (i *Item) Validate() error {
	switch i.itemType {
	case TypePlan, TypeInstruction, TypeFunction:
	default:
		return fmt.Errorf("invalid item type %q", i.itemType)
	}
	if i.name == "" {
		return fmt.Errorf("item name is an empty string")
	}
	return nil
}

// ToMap serializes the item into the wire mapping.
func (i *Item) ToMap() map[string]any {
	m := map[string]any{
		"item_type": i.itemType,
		"name":      i.name,
	}
	if len(i.args) > 0 {
		m["args"] = i.args
	}
	if len(i.kwargs) > 0 {
		m["kwargs"] = i.kwargs
	}
	if len(i.meta) > 0 {
		m["meta"] = i.meta
	}
	if i.itemUID != "" {
		m["item_uid"] = i.itemUID
	}
	return m
}

// FromMap rebuilds an item from a wire mapping (e.g. a queue_item_get
// response).
func FromMap(m map[string]any) (*Item, error) {
	itemType, _ := m["item_type"].(string)
	name, _ := m["name"].(string)

	out := &Item{itemType: itemType, name: name}
	if args, ok := m["args"].([]any); ok {
		out.args = args
	}
	if kwargs, ok := m["kwargs"].(map[string]any); ok {
		out.kwargs = kwargs
	}
	if meta, ok := m["meta"].(map[string]any); ok {
		out.meta = meta
	}
	if uid, ok := m["item_uid"].(string); ok {
		out.itemUID = uid
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
