package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"labtrack/internal/config"
	"labtrack/internal/models"
	"labtrack/internal/store"
)

func newScanCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var patientID string
	var quantity int
	var notes string
	var operator string
	var expected string

	cmd := &cobra.Command{
		Use:   "scan [barcode]",
		Short: "Register a scanned specimen",
		Long: `Register a scanned specimen under a barcode. A record without a barcode
is allowed when notes describe the material instead.`,
		Args: requireAtMostArgs(1, "at most one barcode"),
		RunE: func(cmd *cobra.Command, args []string) error {
			barcode := ""
			if len(args) == 1 {
				barcode = args[0]
			}
			if barcode == "" && notes == "" {
				return fmt.Errorf("barcode or --notes is required")
			}
			if err := models.ValidateBarcode(barcode); err != nil {
				return err
			}
			if err := models.ValidatePatientID(patientID); err != nil {
				return err
			}
			if err := models.ValidateNotes(notes); err != nil {
				return err
			}
			if !models.IsValidQuantity(quantity) {
				return fmt.Errorf("quantity must be between 1 and %d", models.QuantityMax)
			}

			now := time.Now().UTC()
			var expectedAt *time.Time
			if expected != "" {
				parsed, err := parseDateFlag(expected)
				if err != nil {
					return err
				}
				expectedAt = &parsed
			} else {
				due := now.AddDate(0, 0, cfg.DefaultReturnDays)
				expectedAt = &due
			}

			return withStore(cfg, func(st *store.Store) error {
				operatorID, err := resolveOperatorID(cmd.Context(), st, operator)
				if err != nil {
					return err
				}

				id, err := store.GenerateSpecimenID(st.SpecimenExists)
				if err != nil {
					return err
				}

				sp := &models.Specimen{
					ID:                 id,
					Barcode:            barcode,
					PatientID:          patientID,
					Quantity:           quantity,
					OperatorID:         operatorID,
					RegisteredAt:       now,
					ExpectedReturnDate: expectedAt,
					Notes:              notes,
				}
				if err := st.RegisterSpecimen(cmd.Context(), sp); err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(sp)
				}
				return writePlain("registered %s\n", formatSpecimenLine(*sp, now))
			})
		},
	}

	cmd.Flags().StringVarP(&patientID, "patient", "p", "", "patient identifier")
	cmd.Flags().IntVarP(&quantity, "quantity", "q", 1, "number of containers scanned")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "free-form notes")
	cmd.Flags().StringVar(&operator, "operator", "", "operator name")
	cmd.Flags().StringVar(&expected, "expected", "", "expected return date (YYYY-MM-DD)")

	return cmd
}
