package main

import (
	"errors"
	"fmt"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ayusman/gamesight/internal/detector"
	"github.com/ayusman/gamesight/internal/server"
	"github.com/ayusman/gamesight/internal/tray"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var withTray bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the detection HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger(cmd)
			if err != nil {
				return err
			}

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire lock: %w", err)
			}
			if !locked {
				return errors.New("another gamesight server is already running")
			}
			defer lock.Unlock()

			rt, err := buildComponents(cfg, logger, componentOptions{withRelay: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			srv := server.New(server.Config{
				App:            rt.app,
				RequestTimeout: cfg.RequestTimeout(),
				Logger:         logger,
			})

			logger.Info("gamesight starting",
				"addr", cfg.Addr(),
				"templates", rt.library.Len(),
				"ocr", rt.extractor != nil,
				"notify_endpoint", rt.notifier.Endpoint(),
				"notifications", rt.app.NotificationsEnabled())

			if !withTray && !cfg.Tray.Enabled {
				return srv.ListenAndServe(signalCtx, cfg.Addr())
			}

			t := tray.New(rt.app.NotificationsEnabled())
			t.OnToggle(func(enabled bool) {
				if err := rt.app.SetNotificationsEnabled(enabled); err != nil {
					logger.Warn("failed to save notification setting", "error", err)
				}
			})
			t.OnOpen(func() {
				url := fmt.Sprintf("http://localhost:%d/api/health", cfg.Server.Port)
				if err := openBrowser(url); err != nil {
					logger.Warn("failed to open browser", "url", url, "error", err)
				}
			})
			t.OnQuit(cancel)
			rt.app.OnDetection(func(r detector.Result) { t.ShowResult(r) })

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe(signalCtx, cfg.Addr())
				t.Quit()
			}()
			t.Run()
			cancel()
			return <-errCh
		},
	}

	cmd.Flags().BoolVar(&withTray, "tray", false, "Show a system tray menu")
	return cmd
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
