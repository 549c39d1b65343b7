package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"netpress/internal/domain"
	"netpress/internal/infra/store"
	"netpress/internal/infra/tools"
)

func newTestServer(t *testing.T) (*Server, domain.Site) {
	t.Helper()
	ctx := context.Background()

	contentStore, err := store.Open(store.Config{Path: filepath.Join(t.TempDir(), "content.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = contentStore.Close() })

	main, err := contentStore.CreateSite(ctx, domain.Site{Name: "Main", URL: "https://example.com", Public: true})
	require.NoError(t, err)

	registry := domain.NewRegistry()
	registry.Register(tools.NewSiteProvider(contentStore, main.ID, nil, zap.NewNop()).Registration())
	registry.Register(tools.NewNetworkProvider(contentStore, main.ID, nil, zap.NewNop()).Registration())

	invoker := tools.NewInvoker(registry, nil, zap.NewNop())
	return New(registry, invoker, "test", zap.NewNop()), main
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	result, err := s.toolHandler(name)(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: name, Arguments: json.RawMessage(raw)},
	})
	require.NoError(t, err)
	return result
}

func TestToolHandler_Success(t *testing.T) {
	s, _ := newTestServer(t)

	result := callTool(t, s, "list_sites", map[string]any{"job_id": "job-1"})
	require.False(t, result.IsError)

	structured, ok := result.StructuredContent.(domain.ToolResult)
	require.True(t, ok)
	require.True(t, structured.Success)
	require.Equal(t, "list_sites", structured.ToolName)
}

func TestToolHandler_FailureIsResultNotProtocolError(t *testing.T) {
	s, _ := newTestServer(t)

	// Missing job_id fails the tool contract, which must surface as an
	// IsError result rather than an MCP protocol error.
	result := callTool(t, s, "search_posts", map[string]any{"query": "hello"})
	require.True(t, result.IsError)

	structured, ok := result.StructuredContent.(domain.ToolResult)
	require.True(t, ok)
	require.False(t, structured.Success)
	require.Contains(t, structured.Error, "job_id")
}

func TestToolHandler_MalformedArguments(t *testing.T) {
	s, _ := newTestServer(t)

	result, err := s.toolHandler("list_sites")(context.Background(), &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{Name: "list_sites", Arguments: json.RawMessage(`[1,2]`)},
	})
	require.NoError(t, err)
	require.True(t, result.IsError)
}

func TestInputSchema_RequiredAndArrayItems(t *testing.T) {
	schema := InputSchema(domain.ToolDescriptor{
		Name: "search_posts",
		Params: []domain.ParamSpec{
			{Name: "query", Type: domain.ParamString, Required: true},
			{Name: "site_ids", Type: domain.ParamArray, Items: domain.ParamInteger},
			{Name: "per_site_limit", Type: domain.ParamInteger},
		},
	})

	require.Equal(t, "object", schema.Type)
	require.Equal(t, []string{"query"}, schema.Required)
	require.Equal(t, "string", schema.Properties["query"].Type)
	require.Equal(t, "integer", schema.Properties["site_ids"].Items.Type)
	require.Equal(t, "integer", schema.Properties["per_site_limit"].Type)
}

func TestToCallToolResult_TextMirrorsOutcome(t *testing.T) {
	ok := ToCallToolResult(domain.OK("read_post", map[string]any{"post_id": 7}))
	require.False(t, ok.IsError)
	text, isText := ok.Content[0].(*mcp.TextContent)
	require.True(t, isText)
	require.JSONEq(t, `{"post_id":7}`, text.Text)

	failed := ToCallToolResult(domain.Fail("read_post", "post not found"))
	require.True(t, failed.IsError)
	text, isText = failed.Content[0].(*mcp.TextContent)
	require.True(t, isText)
	require.Equal(t, "post not found", text.Text)
}
