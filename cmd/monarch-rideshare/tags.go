package main

import (
	"github.com/spf13/cobra"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/cli"
)

func tagsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Manage the household tags offered during review",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(app *cli.App) error {
				tags, err := app.Service.Tags()
				if err != nil {
					return err
				}
				return cli.PrintTags(cmd.OutOrStdout(), tags)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "sync",
		Short: "Refresh tags from Monarch, keeping which ones are offered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(func(app *cli.App) error {
				tags, err := app.Service.SyncTags(cmd.Context())
				if err != nil {
					return err
				}
				return cli.PrintTags(cmd.OutOrStdout(), tags)
			})
		},
	})

	cmd.AddCommand(tagToggleCmd("enable", "Offer a tag during review", true))
	cmd.AddCommand(tagToggleCmd("disable", "Stop offering a tag during review", false))
	return cmd
}

func tagToggleCmd(use, short string, checked bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <tag-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(app *cli.App) error {
				if err := app.Service.SetTagChecked(args[0], checked); err != nil {
					return err
				}
				tags, err := app.Service.Tags()
				if err != nil {
					return err
				}
				return cli.PrintTags(cmd.OutOrStdout(), tags)
			})
		},
	}
}
