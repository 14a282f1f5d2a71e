package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/confdash/internal/application/search"
	"github.com/bravo68web/confdash/internal/transport/view"
)

func (r *CommandRegistry) NamespaceCommands() *cli.Command {
	return &cli.Command{
		Name:    "ns",
		Aliases: []string{"namespace"},
		Usage:   "Manage namespaces",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List namespaces",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"q"},
						Usage:   "Only show names containing this text",
					},
				},
				Action: r.listNamespaces,
			},
			{
				Name:      "create",
				Usage:     "Create a namespace",
				ArgsUsage: "<name>",
				Action:    r.createNamespace,
			},
			{
				Name:      "delete",
				Usage:     "Delete a namespace and everything in it",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Confirm the deletion",
					},
				},
				Action: r.deleteNamespace,
			},
		},
	}
}

func (r *CommandRegistry) listNamespaces(ctx context.Context, cmd *cli.Command) error {
	api, _, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	names, err := api.ListNamespaces(ctx)
	if err != nil {
		return err
	}
	names = search.Strings(names, cmd.String("search"))
	if cmd.Bool("json") {
		return r.printJSON(names)
	}
	for _, n := range names {
		fmt.Fprintln(r.out, view.NamespaceItem(n).Title())
	}
	return nil
}

func (r *CommandRegistry) createNamespace(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	api, _, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	return api.CreateNamespace(ctx, cmd.Args().First())
}

func (r *CommandRegistry) deleteNamespace(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	name := cmd.Args().First()
	if !cmd.Bool("yes") {
		return cli.Exit(fmt.Sprintf("refusing to delete %q without --yes", name), 2)
	}
	api, _, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	return api.DeleteNamespace(ctx, name)
}
