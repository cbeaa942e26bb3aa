package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/warden/pkg/client"
)

func newClient(g *GlobalFlags) *client.Client {
	return client.New(client.Config{
		BaseURL:  g.APIURL,
		Token:    g.Token,
		Insecure: g.Insecure,
	})
}

func cmdContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

func createProcessCommands(g *GlobalFlags) []*cobra.Command {
	status := &cobra.Command{
		Use:   "status",
		Short: "Show server status and resource usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			st, err := newClient(g).Stats(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("status:  %s\n", st.Status)
			if st.Status == "online" {
				fmt.Printf("pid:     %d\n", st.PID)
				fmt.Printf("cpu:     %.1f%%\n", st.CPUPercent)
				fmt.Printf("ram:     %.1f MB\n", st.RAMMB)
				fmt.Printf("uptime:  %s\n", st.Uptime)
				fmt.Printf("players: %d\n", st.Players)
			}
			return nil
		},
	}

	lifecycle := func(use, short string, op func(ctx context.Context, c *client.Client) (client.OpResult, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := cmdContext()
				defer cancel()
				res, err := op(ctx, newClient(g))
				if err != nil {
					return err
				}
				fmt.Println(res.Message)
				return nil
			},
		}
	}

	start := lifecycle("start", "Start the server process", func(ctx context.Context, c *client.Client) (client.OpResult, error) {
		return c.Start(ctx)
	})
	stop := lifecycle("stop", "Stop the server gracefully", func(ctx context.Context, c *client.Client) (client.OpResult, error) {
		return c.Stop(ctx)
	})
	restart := lifecycle("restart", "Restart the server", func(ctx context.Context, c *client.Client) (client.OpResult, error) {
		return c.Restart(ctx)
	})
	kill := lifecycle("kill", "Force-kill the server process", func(ctx context.Context, c *client.Client) (client.OpResult, error) {
		return c.Kill(ctx)
	})

	command := &cobra.Command{
		Use:   "command <text>...",
		Short: "Inject a console command into the server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			res, err := newClient(g).SendCommand(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(res.Message)
			return nil
		},
	}

	players := &cobra.Command{
		Use:   "players",
		Short: "List players currently online",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cmdContext()
			defer cancel()
			list, err := newClient(g).Players(ctx)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("no players online")
				return nil
			}
			for _, p := range list {
				fmt.Println(p)
			}
			return nil
		},
	}

	return []*cobra.Command{status, start, stop, restart, kill, command, players}
}
