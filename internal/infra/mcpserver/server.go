// Package mcpserver exposes the tool registry over the Model Context
// Protocol on stdio, so MCP-speaking agents can call the network tools
// directly. Tool-level failures surface as IsError results, never as
// protocol errors; the structured tool contract survives the transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/tools"
)

type Server struct {
	registry *domain.Registry
	invoker  *tools.Invoker
	version  string
	logger   *zap.Logger
}

func New(registry *domain.Registry, invoker *tools.Invoker, version string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		registry: registry,
		invoker:  invoker,
		version:  version,
		logger:   logger.Named("mcpserver"),
	}
}

// Run serves the registry snapshot over stdio until ctx is canceled or the
// client disconnects. It blocks.
func (s *Server) Run(ctx context.Context) error {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "netpress",
		Version: s.version,
	}, &mcp.ServerOptions{
		HasTools: true,
	})

	snapshot := s.registry.Snapshot()
	for _, tool := range snapshot.Tools {
		server.AddTool(&mcp.Tool{
			Name:        tool.Name,
			Description: tool.Description,
			InputSchema: InputSchema(tool),
			Annotations: &mcp.ToolAnnotations{ReadOnlyHint: tool.ReadOnly},
		}, s.toolHandler(tool.Name))
	}

	s.logger.Info("mcp server starting (stdio transport)",
		zap.String("etag", snapshot.ETag),
		zap.Int("tools", len(snapshot.Tools)))
	return server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) toolHandler(name string) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := domain.Params{}
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
				return ToCallToolResult(domain.Failf(name, "invalid arguments: %v", err)), nil
			}
		}
		return ToCallToolResult(s.invoker.Invoke(ctx, name, params)), nil
	}
}

// InputSchema converts a descriptor's parameter specs into the JSON object
// schema MCP clients validate against.
func InputSchema(tool domain.ToolDescriptor) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: map[string]*jsonschema.Schema{},
	}
	for _, param := range tool.Params {
		prop := &jsonschema.Schema{
			Type:        string(param.Type),
			Description: param.Description,
		}
		if param.Type == domain.ParamArray {
			items := string(param.Items)
			if items == "" {
				items = string(domain.ParamString)
			}
			prop.Items = &jsonschema.Schema{Type: items}
		}
		schema.Properties[param.Name] = prop
		if param.Required {
			schema.Required = append(schema.Required, param.Name)
		}
	}
	return schema
}

// ToCallToolResult adapts the universal tool result to the MCP shape. The
// structured content is the whole result either way, so callers that parse
// JSON see the same contract HTTP callers do.
func ToCallToolResult(result domain.ToolResult) *mcp.CallToolResult {
	text := result.Error
	if result.Success {
		if raw, err := json.Marshal(result.Data); err == nil {
			text = string(raw)
		}
	}
	return &mcp.CallToolResult{
		IsError: !result.Success,
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		StructuredContent: result,
	}
}
