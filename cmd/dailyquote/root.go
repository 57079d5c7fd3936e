package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/1set/dailyquote"
	"github.com/1set/dailyquote/internal/config"
	"github.com/1set/dailyquote/internal/ctxlog"
)

type globalFlags struct {
	configPath string
	dataDir    string
	logLevel   string
	width      int
}

// app is what every subcommand works with once flags and config are resolved.
type app struct {
	cfg *config.Config
	log *slog.Logger
	svc *dailyquote.Service
	out io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	var gf globalFlags
	var a app

	root := &cobra.Command{
		Use:   "dailyquote",
		Short: "Quote of the day on a coloured card",
		Long: `dailyquote fetches a random quote and a matching monochrome palette once per day,
caches them on disk and shows them as a small widget card.

Without a subcommand it behaves like "dailyquote show".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd, gf, out, errOut)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.show(cmd.Context(), false)
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&gf.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/dailyquote/config.yaml)")
	pf.StringVar(&gf.dataDir, "data-dir", "", "directory holding the daily record files")
	pf.StringVar(&gf.logLevel, "log-level", "", "debug|info|warn|error")
	pf.IntVar(&gf.width, "width", 0, "terminal card width in columns")

	root.AddCommand(
		newShowCmd(&a),
		newRefreshCmd(&a),
		newPNGCmd(&a),
		newPushCmd(&a),
		newCleanCmd(&a),
		newVersionCmd(),
	)
	return root
}

// setup loads config, applies flag overrides and builds the logger and service.
func (a *app) setup(cmd *cobra.Command, gf globalFlags, out, errOut io.Writer) error {
	cfg, err := config.Load(gf.configPath)
	if err != nil {
		return err
	}
	if gf.dataDir != "" {
		cfg.DataDir = gf.dataDir
	}
	if gf.logLevel != "" {
		cfg.LogLevel = gf.logLevel
	}
	if gf.width > 0 {
		cfg.Terminal.Width = gf.width
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return &config.Error{Field: "log_level", Err: err}
	}

	a.cfg = cfg
	a.out = out
	a.log = slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	client := dailyquote.NewClient(
		dailyquote.WithQuoteURL(cfg.Endpoints.Quote),
		dailyquote.WithRandomColorURL(cfg.Endpoints.RandomColor),
		dailyquote.WithSchemeURL(cfg.Endpoints.Scheme),
		dailyquote.WithSchemeMode(cfg.Scheme.Mode),
		dailyquote.WithSchemeCount(cfg.Scheme.Count),
		dailyquote.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		dailyquote.WithLogger(a.log),
	)
	a.svc = dailyquote.NewService(client, dailyquote.NewStore(cfg.DataDir))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(ctxlog.WithLogger(ctx, a.log))
	a.log.Debug("config loaded", "data_dir", cfg.DataDir, "scheme_mode", cfg.Scheme.Mode)
	return nil
}
