// Package mcp exposes the recipe compiler as MCP tools over stdio.
package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/rendis/batchml/internal/compiler"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/internal/logging"
)

// BatchMLServerDeps holds the dependencies for creating a BatchMLServer.
// Nil members are replaced with defaults.
type BatchMLServerDeps struct {
	Compiler *compiler.Compiler
	Guards   *expressions.GuardEvaluator
	Query    *expressions.DocumentQuery
	Logger   *slog.Logger
	// Version is reported to clients during initialization.
	Version string
}

// BatchMLServer wraps an MCP server with the compiler tool handlers.
type BatchMLServer struct {
	compiler  *compiler.Compiler
	guards    *expressions.GuardEvaluator
	query     *expressions.DocumentQuery
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewBatchMLServer creates a BatchMLServer with all tools registered.
func NewBatchMLServer(deps BatchMLServerDeps) (*BatchMLServer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = logging.New(slog.LevelInfo, os.Stderr)
	}
	c := deps.Compiler
	if c == nil {
		var err error
		if c, err = compiler.New(compiler.Options{Logger: logger}); err != nil {
			return nil, err
		}
	}
	if deps.Guards == nil {
		deps.Guards = expressions.NewGuardEvaluator()
	}
	if deps.Query == nil {
		deps.Query = expressions.NewDocumentQuery()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}

	s := &BatchMLServer{
		compiler: c,
		guards:   deps.Guards,
		query:    deps.Query,
		logger:   logger,
	}

	mcpSrv := server.NewMCPServer(
		"batchml",
		deps.Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("batchml compiles recipe workspaces into B2MML/BatchML XML. Use batchml.compile to build a general or master recipe, batchml.stringify_condition and batchml.evaluate_guard to inspect transition guards, batchml.diagram to draw the procedure logic, and batchml.capabilities to list the capabilities a general recipe references."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s, nil
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *BatchMLServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *BatchMLServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *BatchMLServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: compileTool(), Handler: s.handleCompile},
		{Tool: stringifyTool(), Handler: s.handleStringify},
		{Tool: evaluateGuardTool(), Handler: s.handleEvaluateGuard},
		{Tool: diagramTool(), Handler: s.handleDiagram},
		{Tool: capabilitiesTool(), Handler: s.handleCapabilities},
	}
}

// --- Tool definitions ---

func compileTool() mcp.Tool {
	return mcp.NewTool("batchml.compile",
		mcp.WithDescription("Compile a recipe workspace into a general or master recipe XML document"),
		mcp.WithObject("workspace", mcp.Required(), mcp.Description("Workspace graph: {workspace_items, connections}")),
		mcp.WithString("kind", mcp.Required(),
			mcp.Enum("general", "master"),
			mcp.Description("Document kind to build"),
		),
		mcp.WithObject("config", mcp.Description("Optional recipe config (recipe_id, product_id, version, formula_parameters, ...)")),
	)
}

func stringifyTool() mcp.Tool {
	return mcp.NewTool("batchml.stringify_condition",
		mcp.WithDescription("Render a condition tree as transition guard text"),
		mcp.WithObject("condition_group", mcp.Required(), mcp.Description("Condition tree: {operator, children}")),
	)
}

func evaluateGuardTool() mcp.Tool {
	return mcp.NewTool("batchml.evaluate_guard",
		mcp.WithDescription("Dry-run a condition tree against a snapshot of plant signals"),
		mcp.WithObject("condition_group", mcp.Description("Condition tree; an empty tree always holds")),
		mcp.WithObject("signals", mcp.Description("Signal values keyed by \"<instance>.<keyword>\" or bare keyword")),
		mcp.WithArray("completed", mcp.WithStringItems(), mcp.Description("Instances of finished steps")),
	)
}

func diagramTool() mcp.Tool {
	return mcp.NewTool("batchml.diagram",
		mcp.WithDescription("Draw the master recipe procedure logic of a workspace. Returns ASCII art, Mermaid flowchart syntax, or a PNG image"),
		mcp.WithObject("workspace", mcp.Required(), mcp.Description("Workspace graph: {workspace_items, connections}")),
		mcp.WithString("format", mcp.Required(),
			mcp.Enum("ascii", "mermaid", "image"),
			mcp.Description("Output format: ascii (text), mermaid (flowchart syntax), or image (PNG)"),
		),
		mcp.WithObject("signals", mcp.Description("Signal snapshot; when given, transitions are marked satisfied or blocked")),
		mcp.WithArray("completed", mcp.WithStringItems(), mcp.Description("Export IDs of finished steps")),
	)
}

func capabilitiesTool() mcp.Tool {
	return mcp.NewTool("batchml.capabilities",
		mcp.WithDescription("List the capability IRIs referenced by the process elements of a general recipe XML"),
		mcp.WithString("xml", mcp.Required(), mcp.Description("General recipe XML document")),
	)
}
