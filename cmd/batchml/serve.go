package main

import (
	"github.com/spf13/cobra"

	"github.com/rendis/batchml/internal/service"
	"github.com/rendis/batchml/internal/validation"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation service",
	Long:  `Serves the general and master recipe validation routes, the capability query, /healthz and /metrics.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s := settingsFor(cmd)
		if v, _ := cmd.Flags().GetString("listen"); v != "" {
			s.ListenAddr = v
		}
		logger := newLogger(s)

		v, err := validation.New(logger)
		if err != nil {
			return err
		}
		srv, err := service.New(service.Deps{Validator: v, Logger: logger})
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()
		return srv.ListenAndServe(ctx, s.ListenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("listen", "l", "", "listen address (default from settings)")
}
