package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/bravo68web/confdash/internal/application/auth"
	"github.com/bravo68web/confdash/internal/transport/tui"
)

func (r *CommandRegistry) LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in to the config server and store the token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "username",
				Aliases: []string{"u"},
				Usage:   "Username; prompted for when omitted",
			},
			&cli.BoolFlag{
				Name:  "password-stdin",
				Usage: "Read the password from stdin instead of prompting",
			},
		},
		Action: r.login,
	}
}

func (r *CommandRegistry) login(ctx context.Context, cmd *cli.Command) error {
	if err := r.boot(ctx, cmd, bootCLI); err != nil {
		return err
	}
	reader := bufio.NewReader(r.in)

	username := strings.TrimSpace(cmd.String("username"))
	if username == "" {
		fmt.Fprint(r.errOut, "Username: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read username: %w", err)
		}
		username = strings.TrimSpace(line)
	}

	password, err := r.readPassword(reader, cmd.Bool("password-stdin"))
	if err != nil {
		return err
	}

	creds, err := r.deps.Auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "Signed in as %s\n", creds.User.DisplayName())
	return nil
}

// readPassword prompts without echo on a terminal and reads a line otherwise
func (r *CommandRegistry) readPassword(reader *bufio.Reader, fromStdin bool) (string, error) {
	if f, ok := r.in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(r.errOut, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(r.errOut)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (r *CommandRegistry) LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored token",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.boot(ctx, cmd, bootCLI); err != nil {
				return err
			}
			if err := r.deps.Auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(r.out, "Signed out")
			return nil
		},
	}
}

func (r *CommandRegistry) WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.boot(ctx, cmd, bootCLI); err != nil {
				return err
			}
			creds, err := r.deps.Auth.Current()
			if err != nil {
				return err
			}
			if cmd.Bool("json") {
				return r.printJSON(creds.User)
			}
			fmt.Fprintln(r.out, creds.User.DisplayName())
			if email := credentialEmail(creds); email != "" {
				fmt.Fprintln(r.out, mutedStyle.Render(email))
			}
			if exp, ok := auth.TokenExpiry(creds.Token); ok {
				fmt.Fprintln(r.out, mutedStyle.Render("token expires in "+time.Until(exp).Round(time.Minute).String()))
			}
			return nil
		},
	}
}

func (r *CommandRegistry) TUICommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Open the terminal dashboard",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := r.boot(ctx, cmd, bootTUI); err != nil {
				return err
			}
			deps := r.deps
			// expired or missing credentials open the login screen
			creds, _ := deps.Auth.Current()
			return tui.Run(ctx, tui.Options{
				API:            deps.API,
				Export:         deps.Export,
				Docs:           deps.Docs,
				Credentials:    creds,
				Login:          deps.Auth.Login,
				Logout:         deps.Auth.Logout,
				IdleTimeout:    r.cfg.Server.InactivityTimeout,
				VerifyInterval: r.cfg.Server.VerifyInterval,
			})
		},
	}
}
