package main

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/cli"
)

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the review API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAppOptions(cli.Options{System: "api"}, func(app *cli.App) error {
				return cli.RunServe(cmd.Context(), app, port)
			})
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from config)")
	return cmd
}
