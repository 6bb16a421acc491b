package view

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"syscall"

	"github.com/oklog/run"

	"github.com/nicolastakashi/stats-viewer/internal/config"
	"github.com/nicolastakashi/stats-viewer/internal/statsclient"
	"github.com/nicolastakashi/stats-viewer/internal/tui"
)

func RegisterFlags(fs *flag.FlagSet, configFile *string) {
	fs.StringVar(configFile, "config-file", "", "Path to the configuration file, it takes precedence over the command line flags.")

	config.RegisterSourceFlags(fs)
	config.RegisterLogFlags(fs)
	config.RegisterMemoryLimitFlags(fs)
}

// Run blocks until the user quits the terminal UI or the process receives
// SIGINT or SIGTERM.
func Run() error {
	cfg := config.DefaultConfig

	client, err := statsclient.New(cfg.Source.URL, statsclient.WithTimeout(cfg.Source.Timeout))
	if err != nil {
		slog.Error("unable to create statistics client", "err", err)
		return fmt.Errorf("create statistics client: %w", err)
	}

	settings := cfg.ControllerSettings()
	session := tui.NewSession(tui.NewView(cfg.TableColumns(), settings.Variant.HasDatabaseSelector), settings, client)

	var g run.Group

	{
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			slog.Info("starting terminal UI", "source", cfg.Source.URL)
			return tui.Run(ctx, session)
		}, func(error) {
			cancel()
		})
	}

	{
		g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))
	}

	if err := g.Run(); err != nil {
		if !errors.As(err, &run.SignalError{}) {
			return err
		}
	}
	return nil
}
