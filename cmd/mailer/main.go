package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbrack/mailer/internal/config"
	"github.com/dbrack/mailer/internal/daemon"
	"github.com/dbrack/mailer/internal/dispatcher"
	"github.com/dbrack/mailer/internal/email"
	"github.com/dbrack/mailer/internal/logger"
	"github.com/dbrack/mailer/internal/scheduler"
)

type options struct {
	envFile string
	dryRun  bool
	out     io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	rootCmd := &cobra.Command{
		Use:           "mailer <config-path>",
		Short:         "Send a random message from a pool at random intervals",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon(cmd.Context(), opts, args[0])
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <config-path>",
		Short: "Check the configuration and credentials without sending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0])
		},
	}

	sendCmd := &cobra.Command{
		Use:   "send <config-path>",
		Short: "Send one random message now and exit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), opts, args[0])
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "dotenv file to load before reading configuration and credentials")
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, "log messages instead of sending them")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(sendCmd)

	return rootCmd
}

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg   *config.Config
	creds config.Credentials
	log   *logger.Logger
}

// load reads the configuration and credentials once.
// The env file comes first so its MAILER_* overrides reach the config loader.
func load(opts *options, path string) (*app, error) {
	if opts.envFile != "" {
		if err := config.LoadEnvFile(opts.envFile); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:   cfg,
		creds: creds,
		log:   logger.NewWithWriter(opts.out, cfg.Log.Level, cfg.Log.Format),
	}, nil
}

func (a *app) sender(dryRun bool) (email.Sender, error) {
	if dryRun {
		return email.NewLogSender(a.log), nil
	}
	return email.NewSMTPSender(email.SMTPConfig{
		Host:     a.cfg.SMTPServer,
		Port:     a.cfg.SMTPPort,
		Username: a.creds.Username,
		Password: a.creds.Password,
	})
}

func (a *app) build(dryRun bool) (*daemon.Daemon, error) {
	sender, err := a.sender(dryRun)
	if err != nil {
		return nil, fmt.Errorf("failed to create sender: %w", err)
	}

	sched, err := scheduler.New(uint(a.cfg.Interval), a.log)
	if err != nil {
		return nil, err
	}

	disp, err := dispatcher.New(a.cfg, sender, a.log)
	if err != nil {
		return nil, err
	}

	return daemon.New(sched, disp, a.log), nil
}

func runDaemon(ctx context.Context, opts *options, path string) error {
	a, err := load(opts, path)
	if err != nil {
		return err
	}

	d, err := a.build(opts.dryRun)
	if err != nil {
		return err
	}

	return d.Run(ctx)
}

func runSend(ctx context.Context, opts *options, path string) error {
	a, err := load(opts, path)
	if err != nil {
		return err
	}

	d, err := a.build(opts.dryRun)
	if err != nil {
		return err
	}

	return d.RunOnce(ctx)
}

func runValidate(opts *options, path string) error {
	a, err := load(opts, path)
	if err != nil {
		return err
	}

	fmt.Fprintln(opts.out, "Configuration OK")
	fmt.Fprintf(opts.out, "  SMTP server: %s:%d\n", a.cfg.SMTPServer, a.cfg.SMTPPort)
	fmt.Fprintf(opts.out, "  From:        %s\n", a.cfg.From)
	fmt.Fprintf(opts.out, "  To:          %s\n", a.cfg.To)
	fmt.Fprintf(opts.out, "  Interval:    [1, %d) seconds\n", a.cfg.Interval)
	fmt.Fprintf(opts.out, "  Messages:    %d\n", len(a.cfg.Messages))
	fmt.Fprintf(opts.out, "  Credentials: %s\n", a.creds)
	return nil
}
