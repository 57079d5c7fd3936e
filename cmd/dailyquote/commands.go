package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/1set/dailyquote"
	"github.com/1set/dailyquote/internal/ctxlog"
)

func newShowCmd(a *app) *cobra.Command {
	var noCache bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show today's quote card in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.show(cmd.Context(), noCache)
		},
	}
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "fetch a fresh quote without reading or writing the record file")
	return cmd
}

func newRefreshCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Replace today's record with a freshly fetched one and show it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			rec, err := a.svc.Refresh(ctx)
			return a.present(ctx, rec, err)
		},
	}
}

func newPNGCmd(a *app) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "png",
		Short: "Render today's card as a 296x152 PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			wg := a.widget(cmd.Context())
			if outPath == "" || outPath == "-" {
				return dailyquote.RenderPNG(a.out, wg)
			}
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			if err := dailyquote.RenderPNG(f, wg); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.log.Info("png written", "path", outPath)
			if wg.Err != nil {
				return wg.Err
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "dailyquote.png", `output file ("-" for stdout)`)
	return cmd
}

func newPushCmd(a *app) *cobra.Command {
	var (
		mode     string
		deviceID string
	)
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Send today's card to a Quote/0 display",
		Long: `Send today's card to a Quote/0 e-ink display.

The API token and device serial come from the config file (device.token, device.device_id)
or the QUOTE0_TOKEN and QUOTE0_DEVICE environment variables.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if mode == "" {
				mode = a.cfg.Device.Mode
			}
			if deviceID == "" {
				deviceID = a.cfg.Device.DeviceID
			}
			if strings.TrimSpace(deviceID) == "" {
				return errors.New("missing device serial (set device.device_id or QUOTE0_DEVICE)")
			}
			dc, err := dailyquote.NewDeviceClient(a.cfg.Device.Token,
				dailyquote.WithDeviceBaseURL(a.cfg.Device.BaseURL),
				dailyquote.WithDefaultDeviceID(deviceID),
				dailyquote.WithDeviceLogger(a.log),
			)
			if err != nil {
				return err
			}
			wg := a.widget(ctx)
			resp, err := dc.PushWidget(ctx, wg, dailyquote.PushMode(strings.ToLower(mode)))
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Pushed %s (code=%d message=%s)\n", strings.ToLower(mode), resp.Code, resp.Message)
			return wg.Err
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "", "text|image (default from config)")
	cmd.Flags().StringVar(&deviceID, "device", "", "device serial (overrides config)")
	return cmd
}

func newCleanCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete cached records other than today's",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			keep := dailyquote.DayKey(a.svc.Now())
			if all {
				keep = ""
			}
			removed, err := a.svc.Store().Prune(keep)
			for _, d := range removed {
				fmt.Fprintf(a.out, "removed %s\n", a.svc.Store().Path(d))
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "also delete today's record")
	return cmd
}

func (a *app) show(ctx context.Context, noCache bool) error {
	rec, err := a.load(ctx, noCache)
	return a.present(ctx, rec, err)
}

func (a *app) load(ctx context.Context, noCache bool) (*dailyquote.Record, error) {
	if noCache {
		return a.svc.Fetch(ctx)
	}
	return a.svc.Today(ctx)
}

// present renders rec, or the error card when err is set.
func (a *app) present(ctx context.Context, rec *dailyquote.Record, err error) error {
	if err != nil {
		ctxlog.FromContext(ctx).Error("load widget data", "error", err)
		if rerr := dailyquote.RenderTerminal(a.out, dailyquote.ErrorWidget(err), a.cfg.Terminal.Width); rerr != nil {
			return rerr
		}
		return &shownError{err: err}
	}
	return dailyquote.RenderTerminal(a.out, dailyquote.BuildWidget(rec, a.svc.Now()), a.cfg.Terminal.Width)
}

// widget returns today's card, or the error card when the data cannot be loaded.
func (a *app) widget(ctx context.Context) *dailyquote.Widget {
	rec, err := a.load(ctx, false)
	if err != nil {
		ctxlog.FromContext(ctx).Error("load widget data", "error", err)
		return dailyquote.ErrorWidget(err)
	}
	return dailyquote.BuildWidget(rec, a.svc.Now())
}
