package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/myrjola/chartnote/cmd/cli/exports"
	"github.com/myrjola/chartnote/cmd/cli/notes"
	"github.com/myrjola/chartnote/cmd/cli/templates"
	"github.com/myrjola/chartnote/internal/errors"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chartnote-cli",
		Long:          `Command line utilities for chartnote, working on the same database as the server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddGroup(notes.Group, exports.Group, templates.Group)
	rootCmd.AddCommand(notes.Summary, exports.Export, exports.ZPL, templates.Templates)
	return rootCmd
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
