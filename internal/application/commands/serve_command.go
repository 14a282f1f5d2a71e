package commands

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bravo68web/confdash/internal/server"
	"github.com/bravo68web/confdash/internal/transport/http/router"
	"github.com/bravo68web/confdash/internal/transport/ssh"
	"github.com/bravo68web/confdash/internal/transport/tui"
	"github.com/bravo68web/confdash/pkg/logger"
)

func (r *CommandRegistry) ServeCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web dashboard and, when enabled, the SSH terminal UI",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override server.port",
			},
		},
		Action: r.serve,
	}
}

func (r *CommandRegistry) serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.boot(ctx, cmd, bootServer); err != nil {
		return err
	}
	cfg, deps := r.cfg, r.deps
	if p := cmd.Int("port"); p > 0 {
		cfg.Server.Port = int(p)
	}
	log := logger.Get().WithFields(logger.Component("serve"))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(cfg)
	if err != nil {
		return err
	}
	router.NewRouter(srv, deps).RegisterRoutes()

	deps.Sweeper.Start()
	defer deps.Sweeper.Stop()

	if cfg.SSH.Enabled {
		sshSrv, err := ssh.NewServer(&cfg.SSH, tui.Options{
			API:            deps.API,
			Export:         deps.Export,
			Docs:           deps.Docs,
			IdleTimeout:    cfg.Server.InactivityTimeout,
			VerifyInterval: cfg.Server.VerifyInterval,
		}, deps.Sessions.Authenticate)
		if err != nil {
			return err
		}
		go func() {
			if err := sshSrv.ListenAndServe(); err != nil {
				log.Error("SSH server stopped", logger.Error(err))
				stop()
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = sshSrv.Shutdown(shutdownCtx)
		}()
	}

	log.Info("Dashboard ready",
		logger.String("address", cfg.ServerAddress()),
		logger.String("backend", deps.API.BaseURL()),
		logger.Bool("ssh", cfg.SSH.Enabled),
	)
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
