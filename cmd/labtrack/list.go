package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"labtrack/internal/config"
	"labtrack/internal/store"
)

func newListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var scope string
	var search string
	var patientID string
	var operator string
	var from, to string
	var includeDeleted bool
	var sortOrder string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List specimen records",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now().UTC()
			filter := store.ListFilter{
				Scope:          store.ListScope(scope),
				Search:         search,
				PatientID:      patientID,
				IncludeDeleted: includeDeleted,
				Sort:           sortOrder,
				Now:            now,
				Limit:          limit,
				Offset:         offset,
			}
			switch filter.Scope {
			case store.ScopeAll, store.ScopeUnreturned, store.ScopeOverdue,
				store.ScopeToday, store.ScopeIncomplete, store.ScopeCompleted:
			default:
				return fmt.Errorf("invalid scope: %s", scope)
			}

			if from != "" {
				parsed, err := parseDateFlag(from)
				if err != nil {
					return err
				}
				filter.From = &parsed
			}
			if to != "" {
				parsed, err := parseDateFlag(to)
				if err != nil {
					return err
				}
				// Inclusive end of day.
				end := parsed.AddDate(0, 0, 1)
				filter.To = &end
			}

			return withStore(cfg, func(st *store.Store) error {
				if operator != "" {
					id, err := resolveOperatorID(cmd.Context(), st, operator)
					if err != nil {
						return err
					}
					filter.OperatorID = id
				}

				specimens, err := st.ListSpecimens(cmd.Context(), filter)
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(map[string]any{"count": len(specimens), "specimens": specimens})
				}
				if len(specimens) == 0 {
					return writePlain("no specimens found\n")
				}
				return writeSpecimenList(specimens, now)
			})
		},
	}

	cmd.Flags().StringVarP(&scope, "scope", "s", string(store.ScopeAll), "all, unreturned, overdue, today, incomplete, or completed")
	cmd.Flags().StringVar(&search, "search", "", "substring match on barcode, patient id, or notes")
	cmd.Flags().StringVarP(&patientID, "patient", "p", "", "filter by patient identifier")
	cmd.Flags().StringVar(&operator, "operator", "", "filter by operator name")
	cmd.Flags().StringVar(&from, "from", "", "registered on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "registered on or before (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&includeDeleted, "include-deleted", false, "include soft-deleted records")
	cmd.Flags().StringVar(&sortOrder, "sort", "", "newest (default), oldest, or overdue")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum records to return (0 = no limit)")
	cmd.Flags().IntVar(&offset, "offset", 0, "records to skip")

	return cmd
}
