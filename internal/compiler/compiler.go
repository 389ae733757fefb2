// Package compiler turns a workspace and its recipe metadata into a pruned
// B2MML document plus the diagnostics collected on the way.
package compiler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/conditions"
	"github.com/rendis/batchml/internal/document"
	"github.com/rendis/batchml/internal/engine"
	"github.com/rendis/batchml/internal/equipment"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/internal/identity"
	"github.com/rendis/batchml/internal/logging"
	"github.com/rendis/batchml/pkg/schema"
)

// Kind selects the document shape.
type Kind string

const (
	KindGeneral Kind = "general"
	KindMaster  Kind = "master"
)

// ParseKind accepts the document kind names used on the command line.
func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindGeneral:
		return KindGeneral, nil
	case KindMaster:
		return KindMaster, nil
	}
	return "", schema.NewErrorf(schema.ErrCodeInvalidInput, "unknown document kind %q", s)
}

// DocumentValidator checks an assembled document.
type DocumentValidator interface {
	Validate(ctx context.Context, doc *b2mml.Document) *schema.ValidationResult
}

// Options configures a Compiler. Zero values select defaults.
type Options struct {
	Logger *slog.Logger
	// Validator runs over every pruned document; nil skips validation.
	Validator DocumentValidator
	// Now stamps creation dates; defaults to time.Now.
	Now func() time.Time
}

// Compiler runs the in-memory part of an export. It never mutates the
// workspace it is given and is safe for concurrent use.
type Compiler struct {
	logger      *slog.Logger
	validator   DocumentValidator
	now         func() time.Time
	resolver    *equipment.Resolver
	constraints *expressions.ConstraintChecker
}

// New creates a compiler.
func New(opts Options) (*Compiler, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	checker, err := expressions.NewConstraintChecker()
	if err != nil {
		return nil, fmt.Errorf("compiler: %w", err)
	}
	return &Compiler{
		logger:      opts.Logger,
		validator:   opts.Validator,
		now:         opts.Now,
		resolver:    equipment.NewResolver(opts.Logger),
		constraints: checker,
	}, nil
}

// Output is the result of one compilation.
type Output struct {
	Kind     Kind
	ExportID string
	// Document is pruned and ready to serialize.
	Document *b2mml.Document
	// Procedure is the planned procedure logic; nil for general recipes.
	Procedure   *engine.Procedure
	Diagnostics *schema.ValidationResult
}

// Compile builds the document of the given kind. Diagnostics never stop
// compilation; the error is reserved for unusable input.
func (c *Compiler) Compile(ctx context.Context, kind Kind, ws *schema.Workspace, rc *schema.RecipeConfig) (*Output, error) {
	if ws == nil {
		return nil, schema.NewError(schema.ErrCodeInvalidInput, "workspace is required")
	}
	if logging.ExportID(ctx) == "" {
		ctx = logging.WithExportID(ctx, uuid.NewString())
	}
	ctx = logging.WithDocumentKind(ctx, string(kind))

	var out *Output
	switch kind {
	case KindGeneral:
		out = c.general(ctx, ws, rc)
	case KindMaster:
		out = c.master(ctx, ws, rc)
	default:
		return nil, schema.NewErrorf(schema.ErrCodeInvalidInput, "unknown document kind %q", kind)
	}
	out.Kind = kind
	out.ExportID = logging.ExportID(ctx)

	if c.validator != nil {
		out.Diagnostics.Merge(c.validator.Validate(ctx, out.Document))
	}

	c.logger.InfoContext(ctx, "recipe compiled",
		slog.Int("errors", len(out.Diagnostics.Errors)),
		slog.Int("warnings", len(out.Diagnostics.Warnings)),
	)
	return out, nil
}

func (c *Compiler) general(ctx context.Context, ws *schema.Workspace, rc *schema.RecipeConfig) *Output {
	diag := &schema.ValidationResult{}
	_, ranges := c.resolver.ResolveAll(ctx, RecipeItems(ws))
	diag.Merge(ranges)

	cfg := resolveConfig(KindGeneral, rc, c.now())
	doc := document.BuildGeneral(ws.Items, ws.Connections, cfg)
	return &Output{
		Document:    b2mml.PruneDocument(doc),
		Diagnostics: diag,
	}
}

func (c *Compiler) master(ctx context.Context, ws *schema.Workspace, rc *schema.RecipeConfig) *Output {
	diag := &schema.ValidationResult{}

	recipe := RecipeItems(ws)
	assignments := identity.ForItems(recipe)
	bindings, ranges := c.resolver.ResolveAll(ctx, recipe)
	diag.Merge(ranges)

	proc := plan(ws, recipe, assignments, bindings)
	if cyclic := proc.CyclicSteps(); len(cyclic) > 0 {
		ids := make([]string, len(cyclic))
		for i, s := range cyclic {
			ids[i] = s.ExportID
		}
		msg := "steps in a dependency cycle are appended in workspace order: " + strings.Join(ids, ", ")
		c.logger.WarnContext(ctx, "cyclic procedure logic", slog.Any("steps", ids))
		diag.AddWarning("connections", schema.ErrCodeCycleDetected, msg)
	}

	cfg := resolveConfig(KindMaster, rc, c.now())
	for i, req := range cfg.EquipmentRequirements {
		if err := c.constraints.Check(req.Condition); err != nil {
			c.logger.WarnContext(ctx, "equipment constraint does not parse", slog.String("requirement", req.ID), slog.Any("error", err))
			diag.AddWarning(fmt.Sprintf("config.equipment_requirements[%d].constraint", i), schema.ErrCodeConstraintSyntax, err.Error())
		}
	}

	doc := document.BuildMaster(document.MasterInput{
		Config:      cfg,
		Items:       ws.Items,
		Recipe:      recipe,
		Assignments: assignments,
		Bindings:    bindings,
		Procedure:   proc,
	})
	c.logger.DebugContext(ctx, "procedure planned",
		slog.Int("steps", len(proc.Steps)),
		slog.Int("transitions", len(proc.Transitions)),
		slog.Int("links", len(proc.Links)),
	)
	return &Output{
		Document:    b2mml.PruneDocument(doc),
		Procedure:   proc,
		Diagnostics: diag,
	}
}

// Plan computes the master procedure logic of a workspace without
// assembling a document.
func (c *Compiler) Plan(ctx context.Context, ws *schema.Workspace) *engine.Procedure {
	recipe := RecipeItems(ws)
	assignments := identity.ForItems(recipe)
	bindings, _ := c.resolver.ResolveAll(ctx, recipe)
	return plan(ws, recipe, assignments, bindings)
}

func plan(ws *schema.Workspace, recipe []*schema.WorkspaceItem, assignments map[*schema.WorkspaceItem]identity.Assignment, bindings map[*schema.WorkspaceItem]*equipment.Binding) *engine.Procedure {
	return engine.PlanProcedure(engine.ProcedureInput{
		Recipe:      recipe,
		All:         ws.Items,
		Connections: ws.Connections,
		ExportID: func(it *schema.WorkspaceItem) string {
			return assignments[it].ExportID()
		},
		Describe: func(it *schema.WorkspaceItem, exportID string) string {
			return document.DescribeStep(it, exportID, bindings[it])
		},
		Guard: conditions.Guard,
	})
}

// RecipeItems returns the top level recipe-bearing items in workspace order.
func RecipeItems(ws *schema.Workspace) []*schema.WorkspaceItem {
	var out []*schema.WorkspaceItem
	for _, it := range ws.Items {
		if it != nil && it.IsRecipeBearing() {
			out = append(out, it)
		}
	}
	return out
}
