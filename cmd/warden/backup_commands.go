package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func createBackupCommand(g *GlobalFlags) *cobra.Command {
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage server backups",
	}

	var kind, world string
	create := &cobra.Command{
		Use:   "create",
		Short: "Start a backup run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			res, err := newClient(g).CreateBackup(ctx, kind, world)
			if err != nil {
				return err
			}
			fmt.Println(res.Message)
			return nil
		},
	}
	create.Flags().StringVar(&kind, "type", "full", "backup type: full or world")
	create.Flags().StringVar(&world, "world", "", "world folder name for world backups")

	list := &cobra.Command{
		Use:   "list",
		Short: "List committed backups, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			records, err := newClient(g).ListBackups(ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("no backups")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%-50s %10s  %s\n", r.Name, humanize.Bytes(uint64(r.Size)), r.Created.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the current or last backup run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			st, err := newClient(g).BackupStatus(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("state:    %s\n", st.State)
			fmt.Printf("message:  %s\n", st.Message)
			fmt.Printf("progress: %d%%\n", st.Progress)
			if st.Filename != "" {
				fmt.Printf("file:     %s\n", st.Filename)
			}
			return nil
		},
	}

	cancelCmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel the in-flight backup run",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			res, err := newClient(g).CancelBackup(ctx)
			if err != nil {
				return err
			}
			fmt.Println(res.Message)
			return nil
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete one backup archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			res, err := newClient(g).DeleteBackup(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Println(res.Message)
			return nil
		},
	}

	usage := &cobra.Command{
		Use:   "usage",
		Short: "Show disk usage of the backup destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			u, err := newClient(g).DiskUsage(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("total: %s\n", humanize.Bytes(u.Total))
			fmt.Printf("used:  %s\n", humanize.Bytes(u.Used))
			fmt.Printf("free:  %s\n", humanize.Bytes(u.Free))
			return nil
		},
	}

	backupCmd.AddCommand(create, list, status, cancelCmd, deleteCmd, usage)
	return backupCmd
}
