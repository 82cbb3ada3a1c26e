package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	internalauth "labtrack/internal/auth"
	"labtrack/internal/config"
	"labtrack/internal/store"
)

func newUserCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage operators who record scans",
	}
	cmd.AddCommand(newUserAddCmd(cfg, jsonOutput))
	cmd.AddCommand(newUserListCmd(cfg, jsonOutput))
	cmd.AddCommand(newUserSetDisabledCmd(cfg, jsonOutput, "disable", "Disable one operator", true))
	cmd.AddCommand(newUserSetDisabledCmd(cfg, jsonOutput, "enable", "Enable one operator", false))
	cmd.AddCommand(newUserSetPasswordCmd(cfg, jsonOutput))
	return cmd
}

func newUserAddCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var passwordStdin bool
	var isAdmin bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create one operator",
		Long: `Create one operator. Passwords are opt-in: pass --password-stdin to set
one, otherwise the operator records scans without a credential.`,
		Args: requireExactlyArgs(1, "operator name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := internalauth.NormalizeName(args[0])
			if err != nil {
				return err
			}

			passwordHash := ""
			if passwordStdin {
				passwordBytes, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				passwordHash, err = internalauth.HashPassword(strings.TrimSpace(string(passwordBytes)))
				if err != nil {
					return err
				}
			}

			return withStore(cfg, func(st *store.Store) error {
				created, err := st.CreateOperator(cmd.Context(), name, passwordHash, isAdmin, time.Now().UTC())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(created)
				}
				return writePlain("created operator %s (%s)\n", created.Name, created.ID)
			})
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "grant admin rights")
	return cmd
}

func newUserListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List operators",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cfg, func(st *store.Store) error {
				operators, err := st.ListOperators(cmd.Context())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(map[string]any{"count": len(operators), "operators": operators})
				}
				if len(operators) == 0 {
					return writePlain("no operators configured\n")
				}
				if err := writePlain("NAME\tSTATUS\tPASSWORD\tID\n"); err != nil {
					return err
				}
				for _, op := range operators {
					status := "enabled"
					if op.Disabled {
						status = "disabled"
					}
					password := "none"
					if op.HasPassword() {
						password = "set"
					}
					if err := writePlain("%s\t%s\t%s\t%s\n", op.Name, status, password, op.ID); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func newUserSetDisabledCmd(cfg *config.Config, jsonOutput *bool, name, short string, disabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <name>",
		Short: short,
		Args:  requireExactlyArgs(1, "operator name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			operatorName, err := internalauth.NormalizeName(args[0])
			if err != nil {
				return err
			}

			return withStore(cfg, func(st *store.Store) error {
				ok, err := st.SetOperatorDisabled(cmd.Context(), operatorName, disabled)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("unknown operator: %s", operatorName)
				}

				if *jsonOutput {
					return writeJSON(map[string]any{"name": operatorName, "disabled": disabled})
				}
				action := "enabled"
				if disabled {
					action = "disabled"
				}
				return writePlain("%s operator %s\n", action, operatorName)
			})
		},
	}
}

func newUserSetPasswordCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	var passwordStdin bool
	var clear bool

	cmd := &cobra.Command{
		Use:   "set-password <name>",
		Short: "Set or clear one operator's password",
		Args:  requireExactlyArgs(1, "operator name is required"),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := internalauth.NormalizeName(args[0])
			if err != nil {
				return err
			}
			if passwordStdin == clear {
				return fmt.Errorf("exactly one of --password-stdin or --clear is required")
			}

			passwordHash := ""
			if passwordStdin {
				passwordBytes, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				passwordHash, err = internalauth.HashPassword(strings.TrimSpace(string(passwordBytes)))
				if err != nil {
					return err
				}
			}

			return withStore(cfg, func(st *store.Store) error {
				ok, err := st.SetOperatorPassword(cmd.Context(), name, passwordHash)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("unknown operator: %s", name)
				}

				if *jsonOutput {
					return writeJSON(map[string]any{"name": name, "password_set": passwordHash != ""})
				}
				if clear {
					return writePlain("cleared password for %s\n", name)
				}
				return writePlain("set password for %s\n", name)
			})
		},
	}

	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read password from stdin")
	cmd.Flags().BoolVar(&clear, "clear", false, "remove the stored password")
	return cmd
}
