package commands

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"

	"github.com/bravo68web/confdash/internal/transport/view"
)

func (r *CommandRegistry) EventsCommand() *cli.Command {
	return &cli.Command{
		Name:      "events",
		Usage:     "Show the commit activity of a namespace",
		ArgsUsage: "<namespace>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			api, _, err := r.session(ctx, cmd)
			if err != nil {
				return err
			}
			events, err := api.ListEvents(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return r.printJSON(events)
			}
			rows := make([][]string, len(events))
			for i, e := range events {
				rows[i] = []string{e.CommitID, e.CommitMessage, e.Author, e.Date}
			}
			r.printTable([]string{"COMMIT", "MESSAGE", "AUTHOR", "DATE"}, rows)
			return nil
		},
	}
}

func (r *CommandRegistry) NotifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "notify",
		Usage:     "Show webhook deliveries of a namespace",
		ArgsUsage: "<namespace>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			api, _, err := r.session(ctx, cmd)
			if err != nil {
				return err
			}
			records, err := api.ListNotifications(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			items := make([]view.NotifyItem, len(records))
			for i, n := range records {
				items[i] = view.NotifyItem(n)
			}
			return r.printItems(cmd, []string{"ID", "STATUS"}, view.Items(items), records)
		},
	}
}

func (r *CommandRegistry) ExportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Copy every file of a namespace to export storage",
		ArgsUsage: "<namespace>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			api, email, err := r.session(ctx, cmd)
			if err != nil {
				return err
			}
			res, err := r.deps.Export.Export(ctx, api, cmd.Args().First(), email)
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return r.printJSON(res)
			}
			fmt.Fprintf(r.out, "Exported %d files to %s\n", len(res.Files), res.Prefix)
			if res.Revision != "" {
				fmt.Fprintln(r.out, mutedStyle.Render("revision "+res.Revision))
			}
			rows := make([][]string, len(res.Files))
			for i, f := range res.Files {
				rows[i] = []string{f, res.Locations[i]}
			}
			r.printTable([]string{"FILE", "LOCATION"}, rows)
			return nil
		},
	}
}

func (r *CommandRegistry) DocsCommand() *cli.Command {
	return &cli.Command{
		Name:  "docs",
		Usage: "Print the config server documentation",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.boot(ctx, cmd, bootCLI); err != nil {
				return err
			}
			docs := r.deps.Docs.Get(ctx)
			if cmd.Bool("json") {
				return r.printJSON(docs)
			}
			if docs.Fallback {
				fmt.Fprintln(r.errOut, mutedStyle.Render("README unavailable, showing the offline copy"))
			}
			fmt.Fprintln(r.out, lipgloss.NewStyle().Width(100).Render(docs.Markdown))
			return nil
		},
	}
}
