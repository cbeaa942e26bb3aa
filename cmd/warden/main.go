package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := buildRoot().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// GlobalFlags holds persistent flags shared by all commands.
type GlobalFlags struct {
	ConfigPath string
	APIURL     string
	Token      string
	Insecure   bool
}

func buildRoot() *cobra.Command {
	g := &GlobalFlags{}
	root := &cobra.Command{
		Use:          "warden",
		Short:        "Control plane for a single game server: supervise, console, backup",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.ConfigPath, "config", "warden.toml", "path to config file")
	root.PersistentFlags().StringVar(&g.APIURL, "api-url", "http://localhost:8590", "base URL of a running warden daemon")
	root.PersistentFlags().StringVar(&g.Token, "token", "", "bearer token for the API")
	root.PersistentFlags().BoolVar(&g.Insecure, "insecure", false, "skip TLS verification")

	root.AddCommand(createServeCommand(g))
	root.AddCommand(createDaemonCommand(g))
	root.AddCommand(createProcessCommands(g)...)
	root.AddCommand(createBackupCommand(g))
	return root
}
