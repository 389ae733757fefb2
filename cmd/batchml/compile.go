package main

import (
	"github.com/spf13/cobra"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/compiler"
)

var compileCmd = &cobra.Command{
	Use:       "compile general|master",
	Short:     "Print the compiled XML document without submitting it",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(compiler.KindGeneral), string(compiler.KindMaster)},
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(settingsFor(cmd))
		in, err := readInputs(cmd, args[0])
		if err != nil {
			return err
		}
		c, err := newCompiler(logger)
		if err != nil {
			return err
		}
		out, err := c.Compile(cmd.Context(), in.kind, in.ws, in.config)
		if err != nil {
			return err
		}
		text, err := b2mml.Marshal(out.Document)
		if err != nil {
			return err
		}
		if _, err := cmd.OutOrStdout().Write(append(text, '\n')); err != nil {
			return err
		}
		printDiagnostics(cmd.ErrOrStderr(), out.Diagnostics)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(compileCmd)
	addInputFlags(compileCmd)
}
