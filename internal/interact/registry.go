// Package interact wires UI controls to the functions that recompute what
// they display. Each callback reads one input property (plus optional state
// properties) and produces the new value of one output property.
package interact

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoUpdate is returned by a handler that has nothing to emit yet. The
// output keeps its current value.
var ErrNoUpdate = errors.New("no update")

// ErrUnknownInput is returned by Dispatch when no callback listens on the
// input property.
var ErrUnknownInput = errors.New("no callback registered for input")

// ErrInvalidInput wraps errors caused by a malformed control value.
var ErrInvalidInput = errors.New("invalid input value")

// Prop names one property of a UI element, e.g. "genre-checklist.value".
type Prop struct {
	ID       string
	Property string
}

func (p Prop) String() string {
	return p.ID + "." + p.Property
}

// ParseProp parses "id.property".
func ParseProp(s string) (Prop, error) {
	i := strings.LastIndexByte(s, '.')
	if i <= 0 || i == len(s)-1 {
		return Prop{}, fmt.Errorf("invalid property %q, want id.property", s)
	}
	return Prop{ID: s[:i], Property: s[i+1:]}, nil
}

// Inputs carries the triggering value and any declared state values, as raw
// JSON. Missing state values are nil.
type Inputs struct {
	Value json.RawMessage
	State map[Prop]json.RawMessage
}

// Handler computes an output value from inputs.
type Handler func(ctx context.Context, in Inputs) (any, error)

// Callback binds an input property to an output property.
type Callback struct {
	Input  Prop
	Output Prop
	State  []Prop
	Handle Handler
}

// Update is the result of a dispatched callback.
type Update struct {
	Output Prop
	Data   any
}

// Registry holds callbacks keyed by their input property.
type Registry struct {
	callbacks map[Prop]Callback
	order     []Prop
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{callbacks: make(map[Prop]Callback)}
}

// Register adds cb. Each input property may drive only one callback.
func (r *Registry) Register(cb Callback) error {
	if cb.Handle == nil {
		return fmt.Errorf("callback for %s has no handler", cb.Input)
	}
	if _, exists := r.callbacks[cb.Input]; exists {
		return fmt.Errorf("callback already registered for %s", cb.Input)
	}
	r.callbacks[cb.Input] = cb
	r.order = append(r.order, cb.Input)
	return nil
}

// Callbacks returns the registered callbacks in registration order.
func (r *Registry) Callbacks() []Callback {
	out := make([]Callback, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.callbacks[p])
	}
	return out
}

// Dispatch runs the callback listening on input. It returns ErrNoUpdate
// (possibly wrapped) when the handler suppresses output.
func (r *Registry) Dispatch(ctx context.Context, input Prop, in Inputs) (Update, error) {
	cb, ok := r.callbacks[input]
	if !ok {
		return Update{}, fmt.Errorf("%w: %s", ErrUnknownInput, input)
	}

	state := make(map[Prop]json.RawMessage, len(cb.State))
	for _, p := range cb.State {
		state[p] = in.State[p]
	}

	data, err := cb.Handle(ctx, Inputs{Value: in.Value, State: state})
	if err != nil {
		return Update{}, err
	}
	return Update{Output: cb.Output, Data: data}, nil
}
