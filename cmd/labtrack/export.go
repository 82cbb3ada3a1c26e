package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"labtrack/internal/config"
	"labtrack/internal/format"
	"labtrack/internal/models"
	"labtrack/internal/store"
)

func newExportCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var outputPath string
	var exportFormat string
	var includeDeleted bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export specimen records as CSV, YAML, or JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput != nil && *jsonOutput {
				return fmt.Errorf("use --format json instead of --json")
			}

			return withStore(cfg, func(st *store.Store) error {
				specimens, err := st.ListSpecimens(cmd.Context(), store.ListFilter{
					Scope:          store.ScopeAll,
					Sort:           "oldest",
					IncludeDeleted: includeDeleted,
				})
				if err != nil {
					return err
				}

				w := io.Writer(os.Stdout)
				if outputPath != "" {
					f, err := os.Create(outputPath)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}

				switch exportFormat {
				case "csv":
					return exportCSV(w, specimens)
				case "yaml":
					return format.YAMLFormatter{}.Write(w, specimens)
				case "json":
					return outputFormatter.Write(w, specimens)
				default:
					return fmt.Errorf("invalid format: %s (csv, yaml, or json)", exportFormat)
				}
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "csv, yaml, or json")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "include soft-deleted records")

	return cmd
}

func exportCSV(w io.Writer, specimens []models.Specimen) error {
	cw := csv.NewWriter(w)
	header := []string{
		"id", "barcode", "patient_id", "quantity", "operator_id", "registered_at",
		"expected_return_date", "result_returned", "result_returned_at",
		"block_quantity", "block_returned_at", "slide_quantity", "slide_returned_at",
		"notes", "deleted_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, sp := range specimens {
		record := []string{
			sp.ID,
			sp.Barcode,
			sp.PatientID,
			strconv.Itoa(sp.Quantity),
			sp.OperatorID,
			formatTimestamp(sp.RegisteredAt),
			csvDate(sp.ExpectedReturnDate),
			strconv.FormatBool(sp.ResultReturned),
			csvTime(sp.ResultReturnedAt),
			strconv.Itoa(sp.BlockQuantity),
			csvTime(sp.BlockReturnedAt),
			strconv.Itoa(sp.SlideQuantity),
			csvTime(sp.SlideReturnedAt),
			sp.Notes,
			csvTime(sp.DeletedAt),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTimestamp(*t)
}

func csvDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(dateLayout)
}
