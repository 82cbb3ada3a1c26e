package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"labtrack/internal/config"
	"labtrack/internal/models"
	"labtrack/internal/store"
)

func newUpdateCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var patientID string
	var quantity int
	var notes string
	var expected string
	var operator string

	cmd := &cobra.Command{
		Use:   "update <id-or-barcode>",
		Short: "Update a specimen's descriptive fields",
		Args:  requireExactlyArgs(1, "specimen id or barcode is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			update := store.SpecimenUpdate{}
			if cmd.Flags().Changed("patient") {
				if err := models.ValidatePatientID(patientID); err != nil {
					return err
				}
				update.PatientID = &patientID
			}
			if cmd.Flags().Changed("quantity") {
				if !models.IsValidQuantity(quantity) {
					return fmt.Errorf("quantity must be between 1 and %d", models.QuantityMax)
				}
				update.Quantity = &quantity
			}
			if cmd.Flags().Changed("notes") {
				if err := models.ValidateNotes(notes); err != nil {
					return err
				}
				update.Notes = &notes
			}
			if cmd.Flags().Changed("expected") {
				parsed, err := parseDateFlag(expected)
				if err != nil {
					return err
				}
				update.ExpectedReturnDate = &parsed
			}
			if update.PatientID == nil && update.Quantity == nil && update.Notes == nil && update.ExpectedReturnDate == nil {
				return fmt.Errorf("nothing to update")
			}

			return withStore(cfg, func(st *store.Store) error {
				operatorID, err := resolveOperatorID(cmd.Context(), st, operator)
				if err != nil {
					return err
				}
				update.OperatorID = operatorID

				sp, err := resolveSpecimen(cmd.Context(), st, args[0])
				if err != nil {
					return err
				}

				updated, err := st.UpdateSpecimen(cmd.Context(), sp.ID, update, time.Now().UTC())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(updated)
				}
				return writePlain("updated %s\n", updated.ID)
			})
		},
	}

	cmd.Flags().StringVarP(&patientID, "patient", "p", "", "patient identifier")
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 0, "number of containers")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
	cmd.Flags().StringVar(&expected, "expected", "", "expected return date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&operator, "operator", "", "operator name")

	return cmd
}
