package serve

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"syscall"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/rs/cors"

	"github.com/nicolastakashi/stats-viewer/api/routes"
	"github.com/nicolastakashi/stats-viewer/internal/config"
	"github.com/nicolastakashi/stats-viewer/internal/controller"
	"github.com/nicolastakashi/stats-viewer/internal/statsclient"
)

func RegisterFlags(fs *flag.FlagSet, configFile *string) {
	fs.StringVar(configFile, "config-file", "", "Path to the configuration file, it takes precedence over the command line flags.")
	fs.StringVar(&config.DefaultConfig.Server.InsecureListenAddress, "insecure-listen-address", config.DefaultConfig.Server.InsecureListenAddress, "The address the stats-viewer HTTP server should listen on.")
	fs.StringVar(&config.DefaultConfig.Source.Directory, "source-directory", "", "Serve this directory of statistics documents under /stats/.")

	config.RegisterSourceFlags(fs)
	config.RegisterLogFlags(fs)
	config.RegisterMemoryLimitFlags(fs)
}

func Run(uiFS fs.FS) error {
	cfg := config.DefaultConfig

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versioncollector.NewCollector("stats_viewer"),
	)

	client, err := statsclient.New(cfg.Source.URL, statsclient.WithTimeout(cfg.Source.Timeout))
	if err != nil {
		slog.Error("unable to create statistics client", "err", err)
		return fmt.Errorf("create statistics client: %w", err)
	}

	var g run.Group

	{
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		routesHandler, err := routes.NewRoutes(
			routes.WithSettings(cfg.ControllerSettings()),
			routes.WithFetcher(client),
			routes.WithMetrics(controller.NewMetrics(reg)),
			routes.WithColumns(cfg.TableColumns()),
			routes.WithStatsDirectory(cfg.Source.Directory),
			routes.WithHandlers(uiFS, reg, cfg.IsTracingEnabled()),
		)
		if err != nil {
			slog.Error("unable to create routes", "err", err)
			return fmt.Errorf("create routes: %w", err)
		}

		mux := http.NewServeMux()
		mux.Handle("/", routesHandler)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			mux.ServeHTTP(w, r)
		})

		corsHandler := cors.New(cors.Options{
			AllowedOrigins:   cfg.CORS.AllowedOrigins,
			AllowedMethods:   cfg.CORS.AllowedMethods,
			AllowedHeaders:   cfg.CORS.AllowedHeaders,
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           cfg.CORS.MaxAge,
		}).Handler(handler)

		l, err := net.Listen("tcp", cfg.Server.InsecureListenAddress)
		if err != nil {
			slog.Error("failed to listen on address", "err", err)
			return fmt.Errorf("listen: %w", err)
		}

		srv := &http.Server{
			Handler: corsHandler,
		}

		g.Add(func() error {
			slog.Info("listening insecurely", "addr", l.Addr(), "source", cfg.Source.URL)
			if err := srv.Serve(l); err != nil && err != http.ErrServerClosed {
				slog.Error("server stopped", "err", err)
				return err
			}
			return nil
		}, func(error) {
			slog.Info("stopping HTTP Server")
			cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("error shutting down server", "err", err)
			}
		})
	}

	{
		g.Add(run.SignalHandler(context.Background(), syscall.SIGINT, syscall.SIGTERM))
	}

	if err := g.Run(); err != nil {
		if !errors.As(err, &run.SignalError{}) {
			return err
		}
		slog.Info("caught signal; exiting gracefully...")
	}
	return nil
}
