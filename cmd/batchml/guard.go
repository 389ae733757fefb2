package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/rendis/batchml/internal/expressions"
	"github.com/rendis/batchml/pkg/schema"
)

var guardCmd = &cobra.Command{
	Use:   "guard",
	Short: "Dry-run the transition guard of a workspace item",
	Long:  `Evaluates the condition tree attached to an item against a snapshot of plant signals and prints the guard text, the evaluated program and whether it holds.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		wsPath, _ := cmd.Flags().GetString("workspace")
		itemID, _ := cmd.Flags().GetString("item")
		signalsPath, _ := cmd.Flags().GetString("signals")

		ws, err := loadWorkspace(wsPath)
		if err != nil {
			return err
		}
		item := schema.FindItem(ws.Items, itemID)
		if item == nil {
			return schema.NewErrorf(schema.ErrCodeNotFound, "item %q not found", itemID)
		}
		snap, err := loadSnapshot(signalsPath)
		if err != nil {
			return err
		}

		res, err := expressions.NewGuardEvaluator().Evaluate(cmd.Context(), item.ConditionGroup, snap)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	rootCmd.AddCommand(guardCmd)
	guardCmd.Flags().StringP("workspace", "w", "", "workspace file (JSON or YAML)")
	guardCmd.Flags().String("item", "", "ID of the item whose condition tree is evaluated")
	guardCmd.Flags().String("signals", "", "snapshot file {signals, completed}")
	_ = guardCmd.MarkFlagRequired("workspace")
	_ = guardCmd.MarkFlagRequired("item")
}
