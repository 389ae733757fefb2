package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rendis/batchml/internal/b2mml"
	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/pkg/schema"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities file.xml",
	Short: "List the capability IRIs a general recipe references",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		doc, err := b2mml.Unmarshal(data)
		if err != nil {
			return err
		}
		if doc.Name != b2mml.RootGRecipe {
			return schema.NewErrorf(schema.ErrCodeInvalidInput, "expected root element %s, got %s", b2mml.RootGRecipe, doc.Name)
		}
		caps, err := expressions.NewDocumentQuery().Capabilities(cmd.Context(), b2mml.DocumentInfoset(doc))
		if err != nil {
			return err
		}
		if caps == nil {
			caps = []expressions.Capability{}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(caps)
	},
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}
