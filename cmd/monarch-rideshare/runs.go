package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/cli"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect past match runs",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recent match runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(app *cli.App) error {
				runs, err := app.Service.Runs(limit)
				if err != nil {
					return err
				}
				return cli.PrintRuns(cmd.OutOrStdout(), runs)
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the rows of a past run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *cli.App) error {
				run, err := app.Service.Run(args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if _, err := fmt.Fprintln(out, cli.TitleStyle.Render("Run "+run.ID+" ("+run.Status+")")); err != nil {
					return err
				}
				return cli.PrintRows(out, run.Rows)
			})
		},
	})

	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which services have captured sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(app *cli.App) error {
				statuses, err := app.Service.CredentialStatus(cmd.Context())
				if err != nil {
					return err
				}
				return cli.PrintCredentials(cmd.OutOrStdout(), statuses)
			})
		},
	}
}
