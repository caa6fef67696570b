package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/cashflow/internal/cli"
	"github.com/Veraticus/cashflow/internal/storage"
	"github.com/spf13/cobra"
)

func snapshotCmd(env *appEnv) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snapshots"},
		Short:   "Manage database snapshots",
		Long: `Create, list, restore and delete database snapshots.

A snapshot is taken automatically before every import; the five most recent
automatic snapshots are kept.`,
		Example: `  # Save the current state before a big edit
  cashflow snapshot create --tag pre-2024-budget

  # List all snapshots
  cashflow snapshot list

  # Roll back
  cashflow snapshot restore pre-2024-budget`,
	}

	cmd.AddCommand(createSnapshotCmd(env))
	cmd.AddCommand(listSnapshotsCmd(env))
	cmd.AddCommand(restoreSnapshotCmd(env))
	cmd.AddCommand(deleteSnapshotCmd(env))

	return cmd
}

// withSnapshots opens storage and hands a snapshot manager to fn.
func (e *appEnv) withSnapshots(ctx context.Context, fn func(*storage.SnapshotManager) error) error {
	store, err := e.initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	manager, err := store.NewSnapshotManager()
	if err != nil {
		return fmt.Errorf("failed to create snapshot manager: %w", err)
	}
	return fn(manager)
}

func findSnapshot(ctx context.Context, manager *storage.SnapshotManager, id string) (*storage.SnapshotInfo, error) {
	snapshots, err := manager.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range snapshots {
		if snapshots[i].ID == id {
			return &snapshots[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", storage.ErrSnapshotNotFound, id)
}

func createSnapshotCmd(env *appEnv) *cobra.Command {
	var tag, description string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return env.withSnapshots(ctx, func(manager *storage.SnapshotManager) error {
				info, err := manager.Create(ctx, tag, description)
				if err != nil {
					return fmt.Errorf("failed to create snapshot: %w", err)
				}

				out := cmd.OutOrStdout()
				printLine(out, cli.FormatSuccess(fmt.Sprintf("Created snapshot %s (%s)", cli.InfoStyle.Render(info.ID), formatFileSize(info.FileSize))))
				if info.Description != "" {
					printf(out, "  Description: %s\n", info.Description)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&tag, "tag", "t", "", "snapshot name (generated from the time if empty)")
	cmd.Flags().StringVarP(&description, "description", "d", "", "what the snapshot is for")
	return cmd
}

func listSnapshotsCmd(env *appEnv) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return env.withSnapshots(ctx, func(manager *storage.SnapshotManager) error {
				snapshots, err := manager.List(ctx)
				if err != nil {
					return fmt.Errorf("failed to list snapshots: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(snapshots) == 0 {
					printLine(out, cli.SubtleStyle.Render("No snapshots found."))
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				printLine(w, "NAME\tCREATED\tSIZE\tTRANSACTIONS\tRECORDS\tTYPE")
				for _, s := range snapshots {
					kind := "manual"
					if s.IsAuto {
						kind = "auto"
					}
					printf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
						s.ID,
						formatRelativeTime(s.CreatedAt, time.Now()),
						formatFileSize(s.FileSize),
						s.RowCounts["transactions"],
						s.RowCounts["records"],
						kind)
				}
				return w.Flush()
			})
		},
	}
}

func restoreSnapshotCmd(env *appEnv) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "restore <snapshot>",
		Short: "Replace the database with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			return env.withSnapshots(ctx, func(manager *storage.SnapshotManager) error {
				info, err := findSnapshot(ctx, manager, id)
				if err != nil {
					return err
				}

				if !force {
					out := cmd.OutOrStdout()
					printLine(out, cli.FormatWarning("This will replace your current database with snapshot "+id+"."))
					printf(out, "  Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))
					if info.Description != "" {
						printf(out, "  Description: %s\n", info.Description)
					}
					ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Continue?")
					if err != nil {
						return err
					}
					if !ok {
						printLine(out, cli.SubtleStyle.Render("Restore cancelled."))
						return nil
					}
				}

				if err := manager.Restore(ctx, id); err != nil {
					return fmt.Errorf("failed to restore snapshot: %w", err)
				}

				printLine(cmd.OutOrStdout(), cli.FormatSuccess("Restored snapshot "+cli.InfoStyle.Render(id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func deleteSnapshotCmd(env *appEnv) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <snapshot>",
		Short: "Permanently remove a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			return env.withSnapshots(ctx, func(manager *storage.SnapshotManager) error {
				info, err := findSnapshot(ctx, manager, id)
				if err != nil {
					return err
				}

				if !force {
					out := cmd.OutOrStdout()
					printLine(out, cli.FormatWarning("This will permanently delete snapshot "+id+"."))
					printf(out, "  Size: %s\n", formatFileSize(info.FileSize))
					ok, err := cli.Confirm(ctx, cli.NewNonBlockingReader(cmd.InOrStdin()), out, "Continue?")
					if err != nil {
						return err
					}
					if !ok {
						printLine(out, cli.SubtleStyle.Render("Deletion cancelled."))
						return nil
					}
				}

				if err := manager.Delete(ctx, id); err != nil {
					return fmt.Errorf("failed to delete snapshot: %w", err)
				}

				printLine(cmd.OutOrStdout(), cli.FormatSuccess("Deleted snapshot "+cli.InfoStyle.Render(id)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour") + " ago"
	case d < 7*24*time.Hour:
		return plural(int(d.Hours()/24), "day") + " ago"
	default:
		return t.Format("2006-01-02")
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}
