package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikhilbhutani/etpassistant/internal/app"
	"github.com/nikhilbhutani/etpassistant/internal/config"
	"github.com/nikhilbhutani/etpassistant/internal/notice"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := &cli{}
	err := cli.root().ExecuteContext(ctx)
	if cli.app != nil {
		cli.app.Close()
	}
	if err != nil {
		n := notice.FromError(cli.action, err)
		if n.Message == notice.MsgUnexpected {
			n.Message = err.Error()
		}
		fmt.Fprintf(os.Stderr, "%s: %s\n", n.Level, n.Message)
		os.Exit(1)
	}
}

// cli holds the state shared by every command.
type cli struct {
	app     *app.App
	profile string
	action  string
}

func (c *cli) root() *cobra.Command {
	root := &cobra.Command{
		Use:           "etpctl",
		Short:         "Write and review Estudos Técnicos Preliminares from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.profile, "profile", "", "storage profile (overrides ETP_PROFILE)")

	root.AddCommand(
		c.statusCmd(),
		c.settingsCmd(),
		c.fieldsCmd(),
		c.analyzeCmd(),
		c.improveCmd(),
		c.exampleCmd(),
		c.generateCmd(),
		c.validateCmd(),
		c.draftCmd(),
		c.docsCmd(),
		c.formCmd(),
		c.exportCmd(),
		c.askCmd(),
		c.chatCmd(),
		c.historyCmd(),
		c.statsCmd(),
	)
	return root
}

func (c *cli) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.profile != "" {
		cfg.Profile = c.profile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}
