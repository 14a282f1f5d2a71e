package main

import (
	"context"
	"fmt"
	"os"

	"github.com/bravo68web/confdash/internal/application/commands"
	apperrors "github.com/bravo68web/confdash/pkg/errors"
)

func main() {
	cmd := commands.NewCommandRegistry().RegisterCLI()
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, commands.ErrorMessage(apperrors.Message(err)))
		os.Exit(1)
	}
}
