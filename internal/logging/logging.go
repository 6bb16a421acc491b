// Package logging builds the process logger from the log configuration.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/common/promslog"

	"github.com/nicolastakashi/stats-viewer/internal/config"
)

// New returns a logger writing to cfg.File, or to stderr when no file is
// configured. The returned closer releases the file.
func New(cfg config.LogConfig) (*slog.Logger, io.Closer, error) {
	level := promslog.NewLevel()
	if err := level.Set(cfg.Level); err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	format := promslog.NewFormat()
	if err := format.Set(cfg.Format); err != nil {
		return nil, nil, fmt.Errorf("invalid log format: %w", err)
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to open log file: %w", err)
		}
		w, closer = f, f
	}

	logger := promslog.New(&promslog.Config{
		Level:  level,
		Format: format,
		Writer: w,
	})
	return logger, closer, nil
}
