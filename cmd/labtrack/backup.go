package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"labtrack/internal/backup"
	"labtrack/internal/config"
	"labtrack/internal/store"
)

func newBackupCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot the record store and manage retained snapshots",
	}
	cmd.AddCommand(newBackupRunCmd(cfg, jsonOutput))
	cmd.AddCommand(newBackupStatusCmd(cfg, jsonOutput))
	cmd.AddCommand(newBackupListCmd(cfg, jsonOutput))
	return cmd
}

func newResolver(cfg *config.Config) (*backup.MountResolver, error) {
	return backup.NewMountResolver(
		cfg.Backup.Dir,
		cfg.Backup.ExternalMount,
		cfg.Backup.ExternalSubdir,
		slog.Default(),
	)
}

func newBackupRunCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Take one snapshot, write it to every reachable destination, and purge expired local snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newResolver(cfg)
			if err != nil {
				return err
			}

			return withStore(cfg, func(st *store.Store) error {
				orch := backup.NewOrchestrator(st, resolver, cfg.Backup.RetentionDays, slog.Default())
				report, err := orch.Run(cmd.Context())
				if err != nil {
					return err
				}

				if *jsonOutput {
					return writeJSON(report)
				}

				for _, dest := range report.Destinations {
					if dest.OK() {
						if err := writePlain("wrote %s\n", dest.Path); err != nil {
							return err
						}
					} else if err := writePlain("failed %s (%s): %s\n", dest.Dir, dest.Kind, dest.Error); err != nil {
						return err
					}
				}
				if !report.ExternalAvailable {
					if err := writePlain("external destination unavailable\n"); err != nil {
						return err
					}
				}
				return writePlain("purged %d expired snapshot(s)\n", report.Purged)
			})
		},
	}
}

func newBackupStatusCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show destination availability and the most recent snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newResolver(cfg)
			if err != nil {
				return err
			}
			res, err := resolver.Resolve()
			if err != nil {
				return err
			}

			files, err := backup.ListSnapshots(res)
			if err != nil {
				return err
			}
			var latest *backup.SnapshotFile
			if len(files) > 0 {
				latest = &files[0]
			}

			if *jsonOutput {
				return writeJSON(map[string]any{
					"local_dir":          res.Local.Dir,
					"external_available": res.External != nil,
					"snapshot_count":     len(files),
					"latest":             latest,
				})
			}

			if err := writePlain("local: %s\n", res.Local.Dir); err != nil {
				return err
			}
			if res.External != nil {
				if err := writePlain("external: %s\n", res.External.Dir); err != nil {
					return err
				}
			} else if err := writePlain("external: unavailable\n"); err != nil {
				return err
			}
			if latest == nil {
				return writePlain("no snapshots yet\n")
			}
			return writePlain("latest: %s (%s, %d bytes)\n", latest.Name, latest.Kind, latest.SizeBytes)
		},
	}
}

func newBackupListCmd(cfg *config.Config, jsonOutput *bool) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots across destinations, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := newResolver(cfg)
			if err != nil {
				return err
			}
			res, err := resolver.Resolve()
			if err != nil {
				return err
			}

			files, err := backup.ListSnapshots(res)
			if err != nil {
				return err
			}

			if *jsonOutput {
				return writeJSON(map[string]any{"count": len(files), "snapshots": files})
			}
			if len(files) == 0 {
				return writePlain("no snapshots yet\n")
			}
			for _, f := range files {
				if err := writePlain("%s\t%s\t%d\n", f.Name, f.Kind, f.SizeBytes); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
