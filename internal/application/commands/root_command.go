// Package commands builds the confdash command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/confdash/internal/application/auth"
	"github.com/bravo68web/confdash/internal/application/service"
	"github.com/bravo68web/confdash/internal/config"
	"github.com/bravo68web/confdash/internal/domain/models"
	"github.com/bravo68web/confdash/internal/infrastructure/notify"
	"github.com/bravo68web/confdash/internal/infrastructure/otel"
	"github.com/bravo68web/confdash/internal/injectable"
	"github.com/bravo68web/confdash/pkg/logger"
)

type bootMode int

const (
	bootCLI bootMode = iota
	bootTUI
	bootServer
)

// CommandRegistry owns the state shared by every command: configuration,
// dependencies and the output streams
type CommandRegistry struct {
	out    io.Writer
	errOut io.Writer
	in     io.Reader

	cfg  *config.Config
	deps *injectable.Dependencies
	log  *logger.Logger
}

// NewCommandRegistry creates a registry writing to the process streams
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{out: os.Stdout, errOut: os.Stderr, in: os.Stdin}
}

// WithIO replaces the streams. Used by tests.
func (r *CommandRegistry) WithIO(in io.Reader, out, errOut io.Writer) *CommandRegistry {
	r.in, r.out, r.errOut = in, out, errOut
	return r
}

func (r *CommandRegistry) RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:                  "confdash",
		Usage:                 "Dashboard, terminal UI and CLI for the config server",
		Suggest:               true,
		EnableShellCompletion: true,
		Writer:                r.out,
		ErrWriter:             r.errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config.yaml",
				Sources: cli.EnvVars("CONFIG_PATH"),
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug output to stderr",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Action: r.rootAction,
		After: func(ctx context.Context, cmd *cli.Command) error {
			r.close()
			return nil
		},
		Commands: []*cli.Command{
			r.ServeCommand(),
			r.TUICommand(),
			r.LoginCommand(),
			r.LogoutCommand(),
			r.WhoamiCommand(),
			r.NamespaceCommands(),
			r.FileCommands(),
			r.VaultCommands(),
			r.EventsCommand(),
			r.NotifyCommand(),
			r.ExportCommand(),
			r.DocsCommand(),
		},
	}
}

func (r *CommandRegistry) rootAction(ctx context.Context, cmd *cli.Command) error {
	fmt.Fprintln(r.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Fprintln(r.out, "Welcome to the config server dashboard!")
	fmt.Fprintln(r.out, "Run 'confdash tui' for the terminal UI or 'confdash serve' for the web dashboard.")
	fmt.Fprintln(r.out, "Use 'confdash --help' to see every command.")
	fmt.Fprintln(r.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	return nil
}

// boot loads configuration, sets up logging for mode and wires the
// dependencies. It runs once per process.
func (r *CommandRegistry) boot(ctx context.Context, cmd *cli.Command, mode bootMode) error {
	if r.deps != nil {
		return nil
	}
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	var log *logger.Logger
	switch {
	case mode == bootServer:
		log, err = otel.NewLogger(&cfg.Logging, cfg.IsDevelopment())
	case mode == bootTUI && cmd.Bool("verbose"):
		// stderr belongs to the TUI
		log, err = logger.New(&logger.Config{Level: "debug", Output: logger.OutputFile, Format: "json", FilePath: cfg.Logging.FilePath})
	case mode == bootCLI && cmd.Bool("verbose"):
		log, err = logger.New(&logger.Config{Level: "debug", Output: logger.OutputConsole, Format: "console", Development: true})
	default:
		log, err = logger.New(&logger.Config{Output: logger.OutputDiscard})
	}
	if err != nil {
		return err
	}
	logger.SetGlobal(log)

	deps, err := injectable.LoadDependencies(ctx, cfg)
	if err != nil {
		_ = log.Close()
		return err
	}
	r.cfg, r.deps, r.log = cfg, deps, log
	return nil
}

func (r *CommandRegistry) close() {
	if r.deps != nil {
		r.deps.Close()
	}
	if r.log != nil {
		_ = r.log.Close()
	}
}

// session returns the API service signed in with the stored credentials
// and the email commits are attributed to
func (r *CommandRegistry) session(ctx context.Context, cmd *cli.Command) (*service.APIService, string, error) {
	if err := r.boot(ctx, cmd, bootCLI); err != nil {
		return nil, "", err
	}
	api, creds, err := r.deps.Auth.API()
	if err != nil {
		return nil, "", err
	}
	return api.WithNotifier(r.notifier()), credentialEmail(creds), nil
}

func (r *CommandRegistry) notifier() notify.Multi {
	return notify.Multi{notify.NewLog(r.log), newConsoleNotifier(r.errOut)}
}

func credentialEmail(creds *models.Credentials) string {
	if email := auth.TokenEmail(creds.Token); email != "" {
		return email
	}
	if creds.User != nil {
		return creds.User.Email
	}
	return ""
}

// requireArgs fails unless cmd received exactly n positional arguments
func requireArgs(cmd *cli.Command, n int) error {
	if cmd.NArg() != n {
		return cli.Exit(fmt.Sprintf("usage: %s %s", cmd.FullName(), cmd.ArgsUsage), 2)
	}
	return nil
}
