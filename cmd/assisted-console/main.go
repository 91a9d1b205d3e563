package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/config"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout).rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", describe(err))
		os.Exit(1)
	}
}

// describe renders err for the terminal, one line per invalid field
func describe(err error) string {
	var fields errors.FieldErrors
	if !errors.As(err, &fields) {
		return errors.Message(err)
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("invalid input")
	for _, name := range names {
		fmt.Fprintf(&b, "\n  %s: %s", name, fields[name])
	}
	return b.String()
}

// app holds the flags and the clients shared by every command
type app struct {
	configFile   string
	logLevel     string
	logFormat    string
	installerURL string
	token        string
	output       string

	out      io.Writer
	cfg      *config.Config
	log      logger.Interface
	api      installer.API
	dispatch alerts.Dispatcher
}

func newApp(out io.Writer) *app {
	return &app{out: out}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assisted-console",
		Short: "Assisted Console - OpenShift assisted installation from the terminal",
		Long: `Assisted Console drives an assisted installer service: it creates clusters,
manages the hosts that boot the discovery image, shows their validations and
downloads installation logs and kubeconfigs. It also serves the same workflows
as a REST backend for the web console.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&a.configFile, "config", "c", "", "config file path")
	flags.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&a.logFormat, "log-format", "", "log format (json, text)")
	flags.StringVar(&a.installerURL, "installer-url", "", "assisted installer base URL")
	flags.StringVar(&a.token, "token", "", "bearer token for the assisted installer")
	flags.StringVarP(&a.output, "output", "o", "table", "output format (table, json, yaml)")

	cmd.AddCommand(
		a.versionCmd(),
		a.serveCmd(),
		a.clustersCmd(),
		a.hostsCmd(),
		a.validationsCmd(),
		a.logsCmd(),
		a.kubeconfigCmd(),
		a.versionsCmd(),
		a.eventsCmd(),
		a.watchCmd(),
	)
	return cmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "version",
		Short:             "Print version information",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.out, "Assisted Console %s\n", version)
			fmt.Fprintf(a.out, "Commit: %s\n", commit)
			fmt.Fprintf(a.out, "Built: %s\n", date)
		},
	}
}

// setup loads the configuration, applies flag overrides and builds the
// installer client
func (a *app) setup(cmd *cobra.Command, args []string) error {
	switch a.output {
	case outputTable, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unsupported output format %q", a.output)
	}

	cfg, err := config.Load(a.configFile)
	if err != nil {
		return errors.Wrapf(err, "failed to load config")
	}
	if a.installerURL != "" {
		cfg.Installer.BaseURL = strings.TrimRight(a.installerURL, "/")
	}
	if a.token != "" {
		cfg.Installer.Token = a.token
	}

	log, err := setupLogger(cmd, cfg, a.logLevel, a.logFormat)
	if err != nil {
		return errors.Wrapf(err, "failed to setup logger")
	}

	a.cfg = cfg
	a.log = log
	a.api = installer.NewFromConfig(cfg.Installer, log)
	a.dispatch = alerts.NewLogDispatcher(log)
	return nil
}

// setupLogger logs like the configuration says when serving. Terminal
// commands keep stdout for their output and only report warnings and
// alerts on stderr unless asked otherwise.
func setupLogger(cmd *cobra.Command, cfg *config.Config, level, format string) (*logger.Logger, error) {
	lc := logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}
	if cmd.Name() != "serve" {
		lc = logger.Config{Level: "warn", Format: "text", Output: "stderr"}
	}
	if level != "" {
		lc.Level = level
	}
	if format != "" {
		lc.Format = format
	}

	log, err := logger.New(lc)
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}
