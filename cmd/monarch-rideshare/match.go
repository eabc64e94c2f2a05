package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/application/service"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/cli"
)

func matchCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Fetch pending transactions and suggest notes",
		Long: `Fetches pending Monarch transactions and the matching window of Uber,
Uber Eats and Bay Wheels activity, then prints one suggested note per
transaction. Nothing is written to Monarch; use "apply" for that.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(app *cli.App) error {
				progress := cli.NewProgress(os.Stderr, cli.IsTerminal(os.Stderr))
				result, err := app.Service.Match(cmd.Context(), service.MatchOptions{Progress: progress.Report})
				progress.Finish()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if asJSON {
					return cli.PrintJSON(out, result)
				}
				if err := cli.PrintRows(out, result.Rows); err != nil {
					return err
				}
				return cli.PrintMatchSummary(out, result)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the run as JSON")
	return cmd
}
