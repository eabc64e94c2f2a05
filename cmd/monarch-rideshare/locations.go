package main

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/cli"
)

func locationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "Manage short names for ride endpoints",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List location aliases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(app *cli.App) error {
				aliases, err := app.Service.Locations()
				if err != nil {
					return err
				}
				return cli.PrintLocations(cmd.OutOrStdout(), aliases)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <place> <alias>",
		Short: "Name a place, e.g. set \"1455 Market St, San Francisco, CA\" work",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *cli.App) error {
				if err := app.Service.SetLocation(args[0], args[1]); err != nil {
					return err
				}
				aliases, err := app.Service.Locations()
				if err != nil {
					return err
				}
				return cli.PrintLocations(cmd.OutOrStdout(), aliases)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <place>",
		Short: "Forget a place alias",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *cli.App) error {
				if err := app.Service.RemoveLocation(args[0]); err != nil {
					return err
				}
				aliases, err := app.Service.Locations()
				if err != nil {
					return err
				}
				return cli.PrintLocations(cmd.OutOrStdout(), aliases)
			})
		},
	})

	return cmd
}
