package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/prometheus/common/version"

	"github.com/nicolastakashi/stats-viewer/cmd/serve"
	"github.com/nicolastakashi/stats-viewer/cmd/view"
	"github.com/nicolastakashi/stats-viewer/internal/config"
	"github.com/nicolastakashi/stats-viewer/internal/logging"
	"github.com/nicolastakashi/stats-viewer/internal/tracing"
)

//go:embed ui
var assets embed.FS

const program = "stats-viewer"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cmd := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var configFile string
	flagset := flag.NewFlagSet(program+" "+cmd, flag.ExitOnError)

	switch cmd {
	case "serve":
		serve.RegisterFlags(flagset, &configFile)
	case "view":
		view.RegisterFlags(flagset, &configFile)
		// Log lines written to stderr would corrupt the terminal UI.
		config.DefaultConfig.Log.File = os.DevNull
	case "version":
		fmt.Println(version.Print(program))
		return nil
	default:
		return fmt.Errorf("unknown command %q, expected one of: serve, view, version", cmd)
	}

	if err := flagset.Parse(args); err != nil {
		return err
	}

	if configFile != "" {
		if err := config.LoadConfig(configFile); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	}
	if err := config.DefaultConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, closer, err := logging.New(config.DefaultConfig.Log)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)
	slog.Info("starting "+program, "command", cmd, "version", version.Info(), "build_context", version.BuildContext())

	if config.DefaultConfig.MemoryLimit.Enabled {
		limit, err := memlimit.SetGoMemLimitWithOpts(
			memlimit.WithRatio(config.DefaultConfig.MemoryLimit.Ratio),
			memlimit.WithProvider(memlimit.ApplyFallback(memlimit.FromCgroup, memlimit.FromSystem)),
		)
		if err != nil {
			slog.Warn("unable to set memory limit", "err", err)
		} else {
			slog.Info("memory limit set", "limit", limit)
		}
	}

	if config.DefaultConfig.IsTracingEnabled() {
		tp, err := tracing.WithTracing(context.Background(), logger, config.DefaultConfig)
		if err != nil {
			return fmt.Errorf("set up tracing: %w", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				slog.Error("error shutting down tracer provider", "err", err)
			}
		}()
	}

	switch cmd {
	case "view":
		return view.Run()
	default:
		uiFS, err := fs.Sub(assets, "ui")
		if err != nil {
			return fmt.Errorf("load ui assets: %w", err)
		}
		return serve.Run(uiFS)
	}
}
