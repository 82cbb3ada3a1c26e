package main

import (
	"time"

	"github.com/spf13/cobra"

	"labtrack/internal/config"
	"labtrack/internal/store"
)

func newDeleteCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var operator string

	cmd := &cobra.Command{
		Use:     "delete <id-or-barcode>",
		Aliases: []string{"rm"},
		Short:   "Soft-delete a specimen record",
		Long: `Mark a record as deleted. The row stays in the database for the audit
trail but disappears from listings, and its barcode becomes free for a
new registration.`,
		Args: requireExactlyArgs(1, "specimen id or barcode is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				operatorID, err := resolveOperatorID(cmd.Context(), st, operator)
				if err != nil {
					return err
				}
				sp, err := resolveSpecimen(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}

				if err := st.SoftDeleteSpecimen(cmd.Context(), sp.ID, operatorID, time.Now().UTC()); err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(map[string]any{"id": sp.ID, "deleted": true})
				}
				return writePlain("deleted %s\n", sp.ID)
			})
		},
	}

	cmd.Flags().StringVar(&operator, "operator", "", "operator name")

	return cmd
}
