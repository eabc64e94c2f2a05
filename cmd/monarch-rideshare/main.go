// Command monarch-rideshare pairs pending Monarch transactions with Uber
// rides, Uber Eats orders and Bay Wheels trips, and writes the chosen
// notes and tags back to Monarch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/cli"
)

var (
	configPath string
	verbose    bool
	version    = "dev"
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "monarch-rideshare",
		Short:         "Reconcile Monarch transactions with rideshare activity",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ./config.yaml, then environment)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(matchCmd())
	root.AddCommand(applyCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(tagsCmd())
	root.AddCommand(locationsCmd())
	root.AddCommand(runsCmd())
	root.AddCommand(statusCmd())

	return root
}

// withApp bootstraps the app for one command and closes it afterwards.
// Logs go to stderr so stdout carries only command output.
func withApp(fn func(app *cli.App) error) error {
	return withAppOptions(cli.Options{LogOutput: os.Stderr}, fn)
}

func withAppOptions(opts cli.Options, fn func(app *cli.App) error) error {
	opts.ConfigPath = configPath
	opts.Verbose = verbose
	app, err := cli.Bootstrap(opts)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()
	return fn(app)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}
