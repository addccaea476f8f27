// Package tools wires the provider pipelines to the MCP surface. Each tool
// is one validate → resolve credential → call → normalize → project → render
// chain; the dispatcher converts the error taxonomy into single-text-block
// responses so no failure escapes as an uncaught fault.
package tools

import (
	"context"
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/nimbuslab/gtools/internal/schema"
	"github.com/nimbuslab/gtools/internal/toolerr"
)

// Tool is one registered tool: a definition advertised to clients and a
// handler invoked per call.
type Tool interface {
	Definition() mcp.Tool
	Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// Registry collects tools and installs them on an MCP server in name order.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(ts ...Tool) {
	for _, t := range ts {
		r.tools[t.Definition().Name] = t
	}
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Install registers every tool on the server, sorted for a stable listing.
func (r *Registry) Install(s *server.MCPServer) {
	for _, name := range r.Names() {
		t := r.tools[name]
		s.AddTool(t.Definition(), t.Handle)
	}
}

// definition builds an MCP tool definition from a schema declaration so the
// advertised schema and the validator cannot drift apart.
func definition(name, description string, params schema.Object) mcp.Tool {
	s := params.InputSchema()
	props, _ := s["properties"].(map[string]any)
	required, _ := s["required"].([]string)
	return mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

// pipeline is one tool invocation body: validated request in, rendered
// document out.
type pipeline func(ctx context.Context, req *schema.Request) (string, error)

// dispatch validates the call and runs the pipeline, converting taxonomy
// failures into tool-level text. EmptyResult is a successful response whose
// whole document is the explanatory line; everything else becomes an error
// result prefixed with "Error:". The returned Go error is always nil so
// failures never terminate the server.
func dispatch(ctx context.Context, name string, params schema.Object, req mcp.CallToolRequest, run pipeline) (*mcp.CallToolResult, error) {
	id := uuid.NewString()[:8]

	validated, err := params.Validate(req.GetArguments())
	if err != nil {
		log.Printf("[%s %s] rejected: %v", name, id, err)
		return mcp.NewToolResultError("Error: " + toolerr.UserMessage(err)), nil
	}

	out, err := run(ctx, validated)
	if err != nil {
		if toolerr.KindOf(err) == toolerr.KindEmptyResult {
			log.Printf("[%s %s] empty result", name, id)
			return mcp.NewToolResultText(toolerr.UserMessage(err)), nil
		}
		log.Printf("[%s %s] failed (%s): %v", name, id, toolerr.KindOf(err), err)
		return mcp.NewToolResultError("Error: " + toolerr.UserMessage(err)), nil
	}

	log.Printf("[%s %s] ok", name, id)
	return mcp.NewToolResultText(out), nil
}
