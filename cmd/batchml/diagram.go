package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rendis/batchml/internal/diagram"
	"github.com/rendis/batchml/internal/expressions"
)

var diagramCmd = &cobra.Command{
	Use:   "diagram",
	Short: "Draw the master recipe procedure logic",
	Args:  cobra.NoArgs,
	RunE:  runDiagram,
}

func init() {
	rootCmd.AddCommand(diagramCmd)
	diagramCmd.Flags().StringP("workspace", "w", "", "workspace file (JSON or YAML)")
	diagramCmd.Flags().StringP("format", "f", "ascii", "output format: ascii, mermaid, image")
	diagramCmd.Flags().String("signals", "", "snapshot file {signals, completed}; marks transitions satisfied or blocked")
	diagramCmd.Flags().StringP("out", "o", "", "write to file instead of stdout (required for image)")
	_ = diagramCmd.MarkFlagRequired("workspace")
}

func runDiagram(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")
	switch format {
	case "ascii", "mermaid":
	case "image":
		if outPath == "" {
			return fmt.Errorf("--out is required for image output")
		}
	default:
		return fmt.Errorf("format must be ascii, mermaid, or image")
	}

	logger := newLogger(settingsFor(cmd))
	wsPath, _ := cmd.Flags().GetString("workspace")
	ws, err := loadWorkspace(wsPath)
	if err != nil {
		return err
	}
	c, err := newCompiler(logger)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	proc := c.Plan(ctx, ws)

	var ov *diagram.Overlay
	if path, _ := cmd.Flags().GetString("signals"); path != "" {
		snap, err := loadSnapshot(path)
		if err != nil {
			return err
		}
		if ov, err = diagram.GuardOverlay(ctx, expressions.NewGuardEvaluator(), proc, ws, snap); err != nil {
			return err
		}
	}
	model := diagram.Build("Procedure logic", proc, ov)

	var data []byte
	switch format {
	case "ascii":
		data = []byte(diagram.RenderASCII(model))
	case "mermaid":
		data = []byte(diagram.RenderMermaid(model))
	default:
		if data, err = diagram.RenderImage(ctx, model); err != nil {
			return err
		}
	}

	if outPath == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(outPath, data, 0o644)
}
