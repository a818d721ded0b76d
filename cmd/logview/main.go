// Package main is the entry point for the LogView CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LISSConsulting/LISSTech.LogView/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:     "logview",
		Short:   "LogView — live log text from an HTTP stream and a WebSocket feed",
		Version: version,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return execute(signalContext(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	root.Flags().StringVar(&opts.configPath, "config", "", "path to logview.toml (default: search upward from the working directory)")
	root.Flags().StringVar(&opts.httpURL, "http", "", "streamed HTTP log endpoint (overrides "+config.EnvHTTPAPI+")")
	root.Flags().StringVar(&opts.wsURL, "ws", "", "WebSocket log endpoint (overrides "+config.EnvWSSAPI+")")
	root.Flags().BoolVar(&opts.noTUI, "no-tui", false, "print log text to stdout instead of starting the TUI")

	root.AddCommand(
		initCmd(),
		versionCmd(),
	)

	return root
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create logview.toml in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			path, err := config.InitFile(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the LogView version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "logview %s\n", version)
		},
	}
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()
	return ctx
}
