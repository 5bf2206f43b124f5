// Package cli holds the small amount of setup shared by the tools: stderr
// logging and the SDK built from ANS104_* environment variables.
package cli

import (
	"os"

	"github.com/rs/zerolog"

	"xdao.co/ans104/ans104"
)

// Logger returns a console logger on stderr. ANS104_LOG_LEVEL selects the
// level (default info).
func Logger(tool string) zerolog.Logger {
	level, err := zerolog.ParseLevel(os.Getenv("ANS104_LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Str("tool", tool).Logger()
}

// SDK builds an SDK from ANS104_CONFIG (an optional JSON file) and the
// ANS104_* limit overrides.
func SDK(log zerolog.Logger) (*ans104.SDK, error) {
	var (
		cfg ans104.Config
		err error
	)
	if path := os.Getenv("ANS104_CONFIG"); path != "" {
		cfg, err = ans104.LoadConfigFile(path)
	} else {
		cfg, err = cfg.WithEnv()
	}
	if err != nil {
		return nil, err
	}
	return ans104.New(ans104.Options{Config: cfg, Logger: &log})
}

// Fatal logs err and exits with code.
func Fatal(log zerolog.Logger, code int, err error, msg string) {
	log.Error().Err(err).Msg(msg)
	os.Exit(code)
}
