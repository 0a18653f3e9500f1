package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wagiedev/claudify"
	"github.com/wagiedev/claudify/internal/logging"
)

// app holds the persistent flags and the state derived from them.
type app struct {
	configPath string
	logLevel   string
	cliPath    string
	mock       bool

	log      *slog.Logger
	observer claudify.MetricsObserver
}

func newRootCmd() *cobra.Command {
	a := &app{log: logging.NewNop()}

	cmd := &cobra.Command{
		Use:   "claudify",
		Short: "Run prompts through the Claude Code CLI",
		Long: `claudify drives the claude command-line assistant as a subprocess and
returns its answers as structured results.

Providers are read from --config (YAML, or JSON by extension). Without a
config file a single Claude Code provider is used.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level, err := logging.ParseLevel(a.logLevel)
			if err != nil {
				return err
			}

			a.log = logging.NewWithWriter(cmd.ErrOrStderr(), level)

			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "providers file (YAML or JSON)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	flags.StringVar(&a.cliPath, "cli-path", "", "path to the claude binary")
	flags.BoolVar(&a.mock, "mock", false, "answer with canned replies instead of running the CLI")

	cmd.AddCommand(
		newRunCmd(a),
		newHealthCmd(a),
		newMCPCmd(a),
		newVersionCmd(a),
	)

	return cmd
}

// providerConfigs returns the configured providers with the command-line
// overrides applied.
func (a *app) providerConfigs() ([]*claudify.ProviderConfig, error) {
	var cfgs []*claudify.ProviderConfig

	if a.configPath != "" {
		loaded, err := claudify.LoadProviderConfigs(a.configPath)
		if err != nil {
			return nil, err
		}

		for i := range loaded {
			cfgs = append(cfgs, &loaded[i])
		}
	}

	if len(cfgs) == 0 {
		cfgs = append(cfgs, claudify.ClaudeCodeConfig())
	}

	for _, cfg := range cfgs {
		if cfg.Metadata == nil {
			cfg.Metadata = make(map[string]any, 2)
		}

		if _, ok := cfg.Metadata["cli_path"]; !ok && a.cliPath != "" {
			cfg.Metadata["cli_path"] = a.cliPath
		}

		if a.mock {
			cfg.Metadata["mock"] = true
		}
	}

	return cfgs, nil
}

// openManager adds every configured provider. Providers that fail to start
// are logged and skipped; it fails only when none could be added.
func (a *app) openManager(ctx context.Context) (*claudify.Manager, error) {
	cfgs, err := a.providerConfigs()
	if err != nil {
		return nil, err
	}

	opts := []claudify.Option{claudify.WithLogger(a.log), claudify.WithMock(a.mock)}
	if a.observer != nil {
		opts = append(opts, claudify.WithObserver(a.observer))
	}

	mgr := claudify.NewManager(opts...)

	var errs []error

	for _, cfg := range cfgs {
		if _, err := mgr.AddProvider(ctx, cfg); err != nil {
			a.log.Warn("provider unavailable", "provider", cfg.ID, "error", err)
			errs = append(errs, fmt.Errorf("provider %s: %w", cfg.ID, err))
		}
	}

	if len(mgr.Providers()) == 0 {
		return nil, stderrors.Join(errs...)
	}

	return mgr, nil
}

// closeManager disposes mgr, logging failures.
func (a *app) closeManager(ctx context.Context, mgr *claudify.Manager) {
	if err := mgr.Dispose(context.WithoutCancel(ctx)); err != nil {
		a.log.Warn("failed to dispose providers", "error", err)
	}
}
