package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/transport/view"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

func (r *CommandRegistry) VaultCommands() *cli.Command {
	return &cli.Command{
		Name:  "vault",
		Usage: "Manage namespace secrets",
		Commands: []*cli.Command{
			{
				Name:      "list",
				Usage:     "List secret keys with masked values",
				ArgsUsage: "<namespace>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "reveal", Usage: "Print values in clear text"},
				},
				Action: r.listSecrets,
			},
			{
				Name:      "get",
				Usage:     "Print one secret value",
				ArgsUsage: "<namespace> <key>",
				Action:    r.getSecret,
			},
			{
				Name:      "set",
				Usage:     "Add or change a secret; a value of - reads stdin",
				ArgsUsage: "<namespace> <key> <value>",
				Flags:     []cli.Flag{messageFlag("Commit message")},
				Action:    r.setSecret,
			},
			{
				Name:      "rm",
				Usage:     "Delete a secret",
				ArgsUsage: "<namespace> <key>",
				Flags:     []cli.Flag{messageFlag("Commit message")},
				Action:    r.removeSecret,
			},
			{
				Name:      "history",
				Usage:     "List the commits of the vault",
				ArgsUsage: "<namespace>",
				Action:    r.vaultHistory,
			},
			{
				Name:      "diff",
				Usage:     "Show the changes of one vault commit",
				ArgsUsage: "<namespace> <commit>",
				Action:    r.vaultDiff,
			},
		},
	}
}

func (r *CommandRegistry) vaultEditor(ctx context.Context, cmd *cli.Command) (*service.VaultEditor, error) {
	api, email, err := r.session(ctx, cmd)
	if err != nil {
		return nil, err
	}
	v := service.NewVaultEditor(api, cmd.Args().First(), email)
	if err := v.Load(ctx); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *CommandRegistry) listSecrets(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	v, err := r.vaultEditor(ctx, cmd)
	if err != nil {
		return err
	}
	ns := cmd.Args().First()
	reveal := cmd.Bool("reveal")
	secrets := v.Secrets()
	items := make([]view.SecretItem, 0, len(secrets))
	for _, k := range secrets.Keys() {
		if reveal {
			v.ToggleReveal(k)
		}
		items = append(items, view.SecretItem{Namespace: ns, Key: k, Value: v.Display(k), Revealed: reveal})
	}
	return r.printItems(cmd, []string{"KEY", "VALUE"}, view.Items(items), items)
}

func (r *CommandRegistry) getSecret(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	v, err := r.vaultEditor(ctx, cmd)
	if err != nil {
		return err
	}
	key := cmd.Args().Get(1)
	value, ok := v.Secrets()[key]
	if !ok {
		return apperrors.NotFound("secret "+key, nil)
	}
	fmt.Fprintln(r.out, value)
	return nil
}

func (r *CommandRegistry) setSecret(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 3); err != nil {
		return err
	}
	value := cmd.Args().Get(2)
	if value == "-" {
		raw, err := io.ReadAll(r.in)
		if err != nil {
			return fmt.Errorf("read value: %w", err)
		}
		value = strings.TrimRight(string(raw), "\r\n")
	}
	v, err := r.vaultEditor(ctx, cmd)
	if err != nil {
		return err
	}
	return v.Set(ctx, cmd.Args().Get(1), value, cmd.String("message"))
}

func (r *CommandRegistry) removeSecret(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	v, err := r.vaultEditor(ctx, cmd)
	if err != nil {
		return err
	}
	key := cmd.Args().Get(1)
	if _, ok := v.Secrets()[key]; !ok {
		return apperrors.NotFound("secret "+key, nil)
	}
	return v.Delete(ctx, key, cmd.String("message"))
}

func (r *CommandRegistry) vaultHistory(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	api, _, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	commits, err := api.VaultHistory(ctx, cmd.Args().First())
	if err != nil {
		return err
	}
	return r.printCommits(cmd, commits)
}

func (r *CommandRegistry) vaultDiff(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	api, _, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	text, err := api.VaultChanges(ctx, cmd.Args().First(), cmd.Args().Get(1))
	if err != nil {
		return err
	}
	return r.printDiff(cmd, text)
}
