package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/transport/view"
	"github.com/bravo68web/confdash/internal/tree"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

func messageFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "message",
		Aliases: []string{"m"},
		Usage:   usage,
	}
}

func contentFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Read the content from this file, - for stdin",
		Required: true,
	}
}

func (r *CommandRegistry) FileCommands() *cli.Command {
	return &cli.Command{
		Name:  "files",
		Usage: "Browse and edit config files",
		Commands: []*cli.Command{
			{
				Name:      "ls",
				Usage:     "List a directory",
				ArgsUsage: "<namespace> [dir]",
				Action:    r.listFiles,
			},
			{
				Name:      "cat",
				Usage:     "Print a file",
				ArgsUsage: "<namespace> <path>",
				Action:    r.catFile,
			},
			{
				Name:      "create",
				Usage:     "Create a file",
				ArgsUsage: "<namespace> <path>",
				Flags:     []cli.Flag{contentFlag(), messageFlag("Commit message")},
				Action:    r.createFile,
			},
			{
				Name:      "put",
				Usage:     "Commit new content to an existing file",
				ArgsUsage: "<namespace> <path>",
				Flags: []cli.Flag{
					contentFlag(),
					messageFlag("Commit message"),
					&cli.StringFlag{
						Name:  "base",
						Usage: "Commit id the new content was based on; defaults to the latest",
					},
				},
				Action: r.putFile,
			},
			{
				Name:      "rm",
				Usage:     "Delete a file",
				ArgsUsage: "<namespace> <path>",
				Flags:     []cli.Flag{messageFlag("Commit message")},
				Action:    r.removeFile,
			},
			{
				Name:      "history",
				Usage:     "List the commits of a file",
				ArgsUsage: "<namespace> <path>",
				Action:    r.fileHistory,
			},
			{
				Name:      "diff",
				Usage:     "Show the changes of one commit",
				ArgsUsage: "<namespace> <path> <commit>",
				Action:    r.fileDiff,
			},
		},
	}
}

// fileRef builds a ref from "<namespace> <path>" arguments
func fileRef(cmd *cli.Command) (models.FileRef, error) {
	p, err := tree.Normalize(cmd.Args().Get(1))
	if err != nil {
		return models.FileRef{}, err
	}
	dir, name := tree.Split(p)
	if name == "" {
		return models.FileRef{}, apperrors.ValidationError("path", "File path is required")
	}
	return models.FileRef{Namespace: cmd.Args().First(), Path: dir, Name: name}, nil
}

func (r *CommandRegistry) readContent(cmd *cli.Command) (string, error) {
	src := cmd.String("file")
	var (
		raw []byte
		err error
	)
	if src == "-" {
		raw, err = io.ReadAll(r.in)
	} else {
		raw, err = os.ReadFile(src)
	}
	if err != nil {
		return "", fmt.Errorf("read content: %w", err)
	}
	return string(raw), nil
}

func (r *CommandRegistry) listFiles(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 || cmd.NArg() > 2 {
		return requireArgs(cmd, 1)
	}
	ns := cmd.Args().First()
	dir, err := tree.Normalize(cmd.Args().Get(1))
	if err != nil {
		return err
	}
	api, _, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	entries, err := api.ListFiles(ctx, ns, dir)
	if err != nil {
		return err
	}
	items := make([]view.EntryItem, len(entries))
	for i, e := range entries {
		items[i] = view.EntryItem{Namespace: ns, Dir: dir, Entry: e}
	}
	return r.printItems(cmd, []string{"NAME", "TYPE"}, view.Items(items), entries)
}

func (r *CommandRegistry) catFile(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	ref, err := fileRef(cmd)
	if err != nil {
		return err
	}
	api, email, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	fc, err := api.FetchFile(ctx, ref, email)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.printJSON(fc)
	}
	fmt.Fprint(r.out, fc.Content)
	if fc.CommitID != "" {
		fmt.Fprintln(r.errOut, mutedStyle.Render("commit "+fc.CommitID))
	}
	return nil
}

func (r *CommandRegistry) createFile(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	ref, err := fileRef(cmd)
	if err != nil {
		return err
	}
	content, err := r.readContent(cmd)
	if err != nil {
		return err
	}
	message := cmd.String("message")
	if message == "" {
		message = "Create " + ref.FullPath()
	}
	api, email, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	res, err := api.CreateFile(ctx, ref, content, message, email)
	if err != nil {
		return err
	}
	if res.CommitID != "" {
		fmt.Fprintln(r.out, res.CommitID)
	}
	return nil
}

// putFile commits through a FileEditor so the save carries the commit id
// the content was based on
func (r *CommandRegistry) putFile(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	ref, err := fileRef(cmd)
	if err != nil {
		return err
	}
	content, err := r.readContent(cmd)
	if err != nil {
		return err
	}
	api, email, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}

	ed := service.NewFileEditor(api, ref, email)
	if err := ed.Load(ctx); err != nil {
		return err
	}
	if base := cmd.String("base"); base != "" {
		ed.Restore(ed.Original(), base)
	}
	if err := ed.StartEdit(); err != nil {
		return err
	}
	if err := ed.SetContent(content); err != nil {
		return err
	}
	if err := ed.BeginCommit(); err != nil {
		if errors.Is(err, apperrors.ErrNoChanges) {
			fmt.Fprintln(r.errOut, mutedStyle.Render("No changes to commit"))
			return nil
		}
		return err
	}
	message := cmd.String("message")
	if message == "" {
		message = "Update " + ref.FullPath()
	}
	if err := ed.Commit(ctx, message); err != nil {
		return err
	}
	fmt.Fprintln(r.out, ed.CommitID())
	return nil
}

func (r *CommandRegistry) removeFile(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	ref, err := fileRef(cmd)
	if err != nil {
		return err
	}
	api, email, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	return api.DeleteFile(ctx, ref, cmd.String("message"), email)
}

func (r *CommandRegistry) fileHistory(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 2); err != nil {
		return err
	}
	ref, err := fileRef(cmd)
	if err != nil {
		return err
	}
	api, _, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	commits, err := api.FileHistory(ctx, ref)
	if err != nil {
		return err
	}
	return r.printCommits(cmd, commits)
}

func (r *CommandRegistry) fileDiff(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 3); err != nil {
		return err
	}
	ref, err := fileRef(cmd)
	if err != nil {
		return err
	}
	api, _, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}
	text, err := api.FileChanges(ctx, ref, cmd.Args().Get(2))
	if err != nil {
		return err
	}
	return r.printDiff(cmd, text)
}
