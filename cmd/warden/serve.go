package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loykin/warden"
	itls "github.com/loykin/warden/internal/tls"
)

func createServeCommand(g *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the control plane in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(g.ConfigPath)
		},
	}
}

func runServe(configPath string) error {
	c, err := warden.LoadConfig(configPath)
	if err != nil {
		return err
	}
	app, err := warden.New(c)
	if err != nil {
		return err
	}
	defer app.Close()

	tlsConf, err := itls.Options{
		CertFile:     c.TLS.CertFile,
		KeyFile:      c.TLS.KeyFile,
		AutoGenerate: c.TLS.AutoGenerate,
		Dir:          c.Settings().ServerDir(),
	}.ServerConfig()
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.Listen,
		Handler:           app.Handler(),
		TLSConfig:         tlsConf,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if tlsConf != nil {
			errCh <- srv.ListenAndServeTLS("", "")
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()
	app.Logger.Info("warden listening", "addr", c.Listen, "tls", tlsConf != nil)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case sig := <-sigCh:
		app.Logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return nil
}
