package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"notebook-agent/llmclient"
)

// Tool is one capability the model may invoke during the reasoning loop.
// Call returns the tool result as text to append to the transcript.
type Tool interface {
	Name() string
	Description() string
	Parameters() json.RawMessage
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the tools exposed to the model, preserving registration order
// for the request payload.
type Registry struct {
	byName map[string]Tool
	order  []string
}

func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{byName: make(map[string]Tool)}
	for _, t := range tools {
		r.Register(t)
	}
	return r
}

func (r *Registry) Register(t Tool) {
	if _, exists := r.byName[t.Name()]; !exists {
		r.order = append(r.order, t.Name())
	}
	r.byName[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Specs renders the registry as the tool list for a chat completion request.
func (r *Registry) Specs() []llmclient.ToolSpec {
	specs := make([]llmclient.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		t := r.byName[name]
		specs = append(specs, llmclient.ToolSpec{
			Type: "function",
			Function: llmclient.FunctionSpec{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return specs
}

// Dispatch looks up and invokes the named tool.
func (r *Registry) Dispatch(ctx context.Context, name string, args json.RawMessage) (string, error) {
	t, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("unknown tool %q", name)
	}
	return t.Call(ctx, args)
}
