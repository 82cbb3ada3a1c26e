package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"labtrack/internal/config"
	"labtrack/internal/models"
	"labtrack/internal/store"
)

func newReturnCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var quantity int
	var operator string

	cmd := &cobra.Command{
		Use:   "return <id-or-barcode> <stage>",
		Short: "Record a return stage (result, block, or slide)",
		Long: `Record that a specimen's result, blocks, or slides came back. Recording
a stage that is already complete changes nothing. Stages may arrive in
any order unless strict_stage_order is set.`,
		Args: requireExactlyArgs(2, "specimen and stage are required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			stage, err := models.ParseStage(args[1])
			if err != nil {
				return err
			}
			if stage != models.StageResult && !models.IsValidQuantity(quantity) {
				return fmt.Errorf("quantity must be between 1 and %d", models.QuantityMax)
			}

			return withStore(cfg, func(st *store.Store) error {
				operatorID, err := resolveOperatorID(cmd.Context(), st, operator)
				if err != nil {
					return err
				}
				sp, err := resolveSpecimen(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}

				updated, err := st.ApplyStage(cmd.Context(), sp.ID, stage, quantity, cfg.StrictStageOrder, operatorID, time.Now().UTC())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(updated)
				}
				if updated.AllReturned() {
					return writePlain("recorded %s return for %s; all stages complete\n", stage, updated.ID)
				}
				return writePlain("recorded %s return for %s [%s]\n", stage, updated.ID, stageMarks(*updated))
			})
		},
	}

	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of blocks or slides returned")
	cmd.Flags().StringVar(&operator, "operator", "", "operator name")

	return cmd
}
