// gen-diagrams renders the procedure logic of the sample dosing recipe for
// the README.
// Run: go run ./cmd/gen-diagrams
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rendis/batchml/internal/compiler"
	"github.com/rendis/batchml/internal/diagram"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/internal/logging"
	"github.com/rendis/batchml/pkg/schema"
)

const exampleDir = "examples/dosing"

func main() {
	ctx := context.Background()

	var ws schema.Workspace
	if err := readJSON(filepath.Join(exampleDir, "workspace.json"), &ws); err != nil {
		fail(err)
	}
	var snap expressions.Snapshot
	data, err := os.ReadFile(filepath.Join(exampleDir, "signals.yaml"))
	if err != nil {
		fail(err)
	}
	if err := yaml.Unmarshal(data, &snap); err != nil {
		fail(err)
	}

	c, err := compiler.New(compiler.Options{Logger: logging.Discard()})
	if err != nil {
		fail(err)
	}
	proc := c.Plan(ctx, &ws)
	ov, err := diagram.GuardOverlay(ctx, expressions.NewGuardEvaluator(), proc, &ws, snap)
	if err != nil {
		fail(err)
	}
	model := diagram.Build("Dosing master recipe", proc, ov)

	outDir := filepath.Join("docs", "assets")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fail(err)
	}

	ascii := diagram.RenderASCII(model)
	write(filepath.Join(outDir, "diagram-ascii.txt"), []byte(ascii))
	fmt.Println("=== ASCII ===")
	fmt.Println(ascii)

	mermaid := diagram.RenderMermaid(model)
	write(filepath.Join(outDir, "diagram-mermaid.md"), []byte("```mermaid\n"+mermaid+"\n```\n"))
	fmt.Println("=== Mermaid ===")
	fmt.Println(mermaid)

	png, err := diagram.RenderImage(ctx, model)
	if err != nil {
		fmt.Fprintf(os.Stderr, "image error: %v\n", err)
		return
	}
	pngPath := filepath.Join(outDir, "diagram-sample.png")
	write(pngPath, png)
	fmt.Printf("=== Image (PNG) ===\nWritten: %s (%d bytes)\n", pngPath, len(png))
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "gen-diagrams: %v\n", err)
	os.Exit(1)
}
