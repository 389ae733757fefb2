package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/rendis/batchml/internal/compiler"
	"github.com/rendis/batchml/internal/export"
	"github.com/rendis/batchml/internal/transport"
	"github.com/rendis/batchml/internal/validation"
	"github.com/rendis/batchml/pkg/schema"
)

var exportCmd = &cobra.Command{
	Use:       "export general|master",
	Short:     "Compile, validate and save a recipe document",
	Long:      `Compiles the workspace, submits the XML to the validation service once and saves the file the answer calls for into the output directory.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(compiler.KindGeneral), string(compiler.KindMaster)},
	RunE:      runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addInputFlags(exportCmd)
	exportCmd.Flags().String("service", "", "validation service base URL (default from settings)")
	exportCmd.Flags().String("out", "", "output directory (default from settings)")
	exportCmd.Flags().Bool("offline", false, "skip the validation service and save the unchecked document")
}

// addInputFlags registers the workspace and config flags shared by the
// compiling commands.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("workspace", "w", "", "workspace file (JSON or YAML)")
	cmd.Flags().StringP("config", "c", "", "recipe config file (YAML or JSON)")
	_ = cmd.MarkFlagRequired("workspace")
}

type inputs struct {
	kind   compiler.Kind
	ws     *schema.Workspace
	config *schema.RecipeConfig
}

func readInputs(cmd *cobra.Command, kindArg string) (*inputs, error) {
	kind, err := compiler.ParseKind(kindArg)
	if err != nil {
		return nil, err
	}
	wsPath, _ := cmd.Flags().GetString("workspace")
	ws, err := loadWorkspace(wsPath)
	if err != nil {
		return nil, err
	}
	cfgPath, _ := cmd.Flags().GetString("config")
	rc, err := loadRecipeConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return &inputs{kind: kind, ws: ws, config: rc}, nil
}

func newCompiler(logger *slog.Logger) (*compiler.Compiler, error) {
	v, err := validation.New(logger)
	if err != nil {
		return nil, err
	}
	return compiler.New(compiler.Options{Logger: logger, Validator: v})
}

func runExport(cmd *cobra.Command, args []string) error {
	s := settingsFor(cmd)
	if v, _ := cmd.Flags().GetString("service"); v != "" {
		s.ServiceURL = v
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		s.OutDir = v
	}
	offline, _ := cmd.Flags().GetBool("offline")
	logger := newLogger(s)

	in, err := readInputs(cmd, args[0])
	if err != nil {
		return err
	}
	c, err := newCompiler(logger)
	if err != nil {
		return err
	}

	opts := export.Options{
		Compiler: c,
		Sink:     &export.DirSink{Dir: s.OutDir},
		Logger:   logger,
	}
	if !offline {
		tr, err := transport.NewHTTP(transport.Config{BaseURL: s.ServiceURL, Timeout: s.TimeoutDuration()})
		if err != nil {
			return err
		}
		opts.Transport = tr
	}
	exp, err := export.New(opts)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	res, err := exp.Export(ctx, in.kind, in.ws, in.config)
	if res != nil {
		printResult(cmd.OutOrStdout(), res)
	}
	if err != nil {
		return err
	}
	if res.Outcome == export.OutcomeInvalid {
		return fmt.Errorf("%s recipe rejected by the validation service", res.Kind)
	}
	return nil
}

func printResult(w io.Writer, res *export.Result) {
	fmt.Fprintf(w, "export %s (%s): %s\n", res.ExportID, res.Kind, res.Outcome)
	if res.Saved() {
		fmt.Fprintf(w, "saved %s\n", res.Filename)
	} else {
		fmt.Fprintln(w, "nothing saved")
	}
	printDiagnostics(w, res.Diagnostics)
}

func printDiagnostics(w io.Writer, r *schema.ValidationResult) {
	if r == nil {
		return
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "error   %s [%s] %s\n", e.Path, e.Code, e.Message)
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "warning %s [%s] %s\n", e.Path, e.Code, e.Message)
	}
}
