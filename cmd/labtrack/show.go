package main

import (
	"github.com/spf13/cobra"

	"labtrack/internal/config"
	"labtrack/internal/models"
	"labtrack/internal/store"
)

func newShowCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var withAudit bool

	cmd := &cobra.Command{
		Use:   "show <id-or-barcode>",
		Short: "Show one specimen record",
		Args:  requireExactlyArgs(1, "specimen id or barcode is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				sp, err := resolveSpecimen(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}

				var audit []models.AuditEntry
				if withAudit {
					audit, err = st.ListAuditEntries(cmd.Context(), sp.ID, 0)
					if err != nil {
						return err
					}
				}

				if *jsonOutput {
					if withAudit {
						return writeJSON(map[string]any{"specimen": sp, "audit": audit})
					}
					return writeJSON(sp)
				}

				if err := writeSpecimenDetail(sp); err != nil {
					return err
				}
				if withAudit {
					if err := writePlain("audit:\n"); err != nil {
						return err
					}
					for _, entry := range audit {
						if err := writePlain("  %s %s %s\n", formatTimestamp(entry.CreatedAt), entry.Action, entry.OperatorID); err != nil {
							return err
						}
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&withAudit, "audit", false, "include the audit trail")

	return cmd
}
