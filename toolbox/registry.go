// Package toolbox defines the tools an analysis agent can call and binds
// them to the git and GitHub inspection layers. Each tool takes a JSON
// object of arguments and returns a JSON-serializable result.
package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
)

// Tool is one callable operation exposed to the model.
type Tool struct {
	Name        string
	Description string
	InputSchema map[string]any
	Call        func(ctx context.Context, input json.RawMessage) (any, error)
}

// Registry holds a fixed set of tools and dispatches calls by name.
type Registry struct {
	tools  []Tool
	byName map[string]*Tool
}

// NewRegistry builds a registry from the given tools. Duplicate names are a
// programming error and panic.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: tools, byName: make(map[string]*Tool, len(tools))}
	for i := range r.tools {
		t := &r.tools[i]
		if _, exists := r.byName[t.Name]; exists {
			panic(fmt.Sprintf("duplicate tool name: %s", t.Name))
		}
		r.byName[t.Name] = t
	}
	return r
}

// Tools returns the registered tools in registration order.
func (r *Registry) Tools() []Tool {
	return r.tools
}

// Call dispatches a tool invocation by name.
func (r *Registry) Call(ctx context.Context, name string, input json.RawMessage) (any, error) {
	tool, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return tool.Call(ctx, input)
}

// objectSchema builds a JSON Schema object for a tool's arguments.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func prop(typ, description string) map[string]any {
	return map[string]any{"type": typ, "description": description}
}
