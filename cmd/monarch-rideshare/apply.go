package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/cli"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
)

func applyCmd() *cobra.Command {
	var d activity.Decision

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Write a note (and optional tag) to a Monarch transaction",
		Long: `Sets the note on a transaction, marks it reviewed, and replaces its
tags with the given tag. The decision is also recorded locally.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(app *cli.App) error {
				applied, err := app.Service.Apply(cmd.Context(), d)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %q\n",
					cli.TitleStyle.Render("Applied"), applied.TransactionID, applied.Note)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&d.TransactionID, "txn", "", "Monarch transaction ID")
	cmd.Flags().StringVar(&d.Note, "note", "", "note to set")
	cmd.Flags().StringVar(&d.TagID, "tag", "", "tag ID to set")
	_ = cmd.MarkFlagRequired("txn")
	return cmd
}
