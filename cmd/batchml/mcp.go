package main

import (
	"github.com/spf13/cobra"

	"github.com/rendis/batchml/pkg/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the compiler tools over MCP (stdio)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger(settingsFor(cmd))
		c, err := newCompiler(logger)
		if err != nil {
			return err
		}
		srv, err := mcp.NewBatchMLServer(mcp.BatchMLServerDeps{
			Compiler: c,
			Logger:   logger,
			Version:  version,
		})
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return srv.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
