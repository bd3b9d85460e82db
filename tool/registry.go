package tool

import (
	"github.com/agendum/agendum/model"
)

// Registry is the static catalog of invocable capabilities, defined at
// process start. Listing order is registration order. No mutation happens
// at runtime, so reads need no synchronization.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds a Registry over the given tools. A duplicate name
// overrides the earlier registration but keeps its listing position.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if _, exists := r.tools[t.Name()]; !exists {
			r.order = append(r.order, t.Name())
		}
		r.tools[t.Name()] = t
	}
	return r
}

// List returns the ordered tool specs.
func (r *Registry) List() []Spec {
	specs := make([]Spec, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		specs = append(specs, Spec{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.Parameters(),
		})
	}
	return specs
}

// Definitions returns the full catalog in model wire format. The complete
// registry is always exposed to the model; role-based scoping is guidance
// in the system directive, never a filter here.
func (r *Registry) Definitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int { return len(r.order) }
