package mcp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/compiler"
	"github.com/rendis/batchml/internal/conditions"
	"github.com/rendis/batchml/internal/diagram"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/pkg/schema"
)

// compileResult is the JSON answer of batchml.compile.
type compileResult struct {
	ExportID string                   `json:"export_id"`
	Kind     string                   `json:"kind"`
	Valid    bool                     `json:"valid"`
	XML      string                   `json:"xml"`
	Errors   []schema.ValidationIssue `json:"errors,omitempty"`
	Warnings []schema.ValidationIssue `json:"warnings,omitempty"`
}

// handleCompile compiles a workspace into the requested document kind.
func (s *BatchMLServer) handleCompile(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	kindArg, err := req.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError("kind is required"), nil
	}
	kind, err := compiler.ParseKind(kindArg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var ws schema.Workspace
	if err := decodeArg(req, "workspace", true, &ws); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var rc *schema.RecipeConfig
	if raw := mcp.ParseStringMap(req, "config", nil); raw != nil {
		rc = &schema.RecipeConfig{}
		if err := decodeArg(req, "config", false, rc); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	out, err := s.compiler.Compile(ctx, kind, &ws, rc)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("compile failed: %v", err)), nil
	}
	text, err := b2mml.Marshal(out.Document)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("serialize failed: %v", err)), nil
	}

	s.logger.DebugContext(ctx, "compiled via mcp",
		slog.String("export_id", out.ExportID),
		slog.String("kind", string(kind)),
	)
	return marshalResult(compileResult{
		ExportID: out.ExportID,
		Kind:     string(kind),
		Valid:    out.Diagnostics.Valid(),
		XML:      string(text),
		Errors:   out.Diagnostics.Errors,
		Warnings: out.Diagnostics.Warnings,
	})
}

// handleStringify renders a condition tree as guard text.
func (s *BatchMLServer) handleStringify(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var group schema.ConditionGroup
	if err := decodeArg(req, "condition_group", true, &group); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(conditions.Stringify(&group)), nil
}

// handleEvaluateGuard dry-runs a condition tree against a signal snapshot.
func (s *BatchMLServer) handleEvaluateGuard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var group *schema.ConditionGroup
	if mcp.ParseStringMap(req, "condition_group", nil) != nil {
		group = &schema.ConditionGroup{}
		if err := decodeArg(req, "condition_group", false, group); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	res, err := s.guards.Evaluate(ctx, group, snapshotArg(req))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("guard evaluation failed: %v", err)), nil
	}
	return marshalResult(res)
}

// handleDiagram draws the procedure logic of a workspace.
func (s *BatchMLServer) handleDiagram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	format, err := req.RequireString("format")
	if err != nil {
		return mcp.NewToolResultError("format is required"), nil
	}
	if format != "ascii" && format != "mermaid" && format != "image" {
		return mcp.NewToolResultError("format must be ascii, mermaid, or image"), nil
	}

	var ws schema.Workspace
	if err := decodeArg(req, "workspace", true, &ws); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	proc := s.compiler.Plan(ctx, &ws)

	var ov *diagram.Overlay
	args := req.GetArguments()
	if _, ok := args["signals"]; ok {
		ov, err = diagram.GuardOverlay(ctx, s.guards, proc, &ws, snapshotArg(req))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else if _, ok := args["completed"]; ok {
		ov = &diagram.Overlay{Completed: req.GetStringSlice("completed", nil)}
	}

	model := diagram.Build("Procedure logic", proc, ov)

	switch format {
	case "ascii":
		return mcp.NewToolResultText(diagram.RenderASCII(model)), nil
	case "mermaid":
		return mcp.NewToolResultText(diagram.RenderMermaid(model)), nil
	default:
		png, imgErr := diagram.RenderImage(ctx, model)
		if imgErr != nil {
			return mcp.NewToolResultError(fmt.Sprintf("image render failed: %v", imgErr)), nil
		}
		encoded := base64.StdEncoding.EncodeToString(png)
		return mcp.NewToolResultImage("procedure logic", encoded, "image/png"), nil
	}
}

// handleCapabilities lists the capabilities a general recipe references.
func (s *BatchMLServer) handleCapabilities(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("xml")
	if err != nil {
		return mcp.NewToolResultError("xml is required"), nil
	}
	doc, err := b2mml.Unmarshal([]byte(text))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid xml: %v", err)), nil
	}
	if doc.Name != b2mml.RootGRecipe {
		return mcp.NewToolResultError(fmt.Sprintf("expected root element %s, got %s", b2mml.RootGRecipe, doc.Name)), nil
	}
	caps, err := s.query.Capabilities(ctx, b2mml.DocumentInfoset(doc))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("capability query failed: %v", err)), nil
	}
	if caps == nil {
		caps = []expressions.Capability{}
	}
	return marshalResult(caps)
}

// decodeArg re-encodes an object argument into out.
func decodeArg(req mcp.CallToolRequest, key string, required bool, out any) error {
	raw := mcp.ParseStringMap(req, key, nil)
	if raw == nil {
		if required {
			return fmt.Errorf("%s is required", key)
		}
		return nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	return nil
}

func snapshotArg(req mcp.CallToolRequest) expressions.Snapshot {
	return expressions.Snapshot{
		Signals:   mcp.ParseStringMap(req, "signals", nil),
		Completed: req.GetStringSlice("completed", nil),
	}
}

// marshalResult converts a value to a JSON text tool result.
func marshalResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultJSON(json.RawMessage(data))
}
