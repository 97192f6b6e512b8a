// Package applog wires zerolog to a per-day rotated log file under the
// store root, mirroring warn/error records to stderr. Nothing the core
// packages log ever reaches stdout, since stdout is reserved for
// JSON-RPC frames.
package applog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// New opens (creating if necessary) "<logDir>/codekg-<date>.log" and
// returns a logger at the given level that writes there and echoes
// warn-and-above records to stderr.
func New(logDir, level string) (zerolog.Logger, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return zerolog.Logger{}, fmt.Errorf("create log dir: %w", err)
	}

	path := filepath.Join(logDir, fmt.Sprintf("codekg-%s.log", time.Now().UTC().Format("2006-01-02")))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("open log file: %w", err)
	}

	stderrWriter := &warnAndAboveWriter{out: zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true}}
	writer := zerolog.MultiLevelWriter(f, stderrWriter)
	logger := zerolog.New(writer).With().Timestamp().Logger().Level(parseLevel(level))
	return logger, nil
}

// warnAndAboveWriter drops info/debug records so stderr only carries
// warnings and errors; the full stream still goes to the log file.
type warnAndAboveWriter struct {
	out io.Writer
}

func (w *warnAndAboveWriter) Write(p []byte) (int, error) {
	return len(p), nil
}

func (w *warnAndAboveWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	if level < zerolog.WarnLevel {
		return len(p), nil
	}
	return w.out.Write(p)
}

func parseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
