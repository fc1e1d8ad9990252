package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"stake-gauntlet/internal/config"
)

var sink io.Writer = os.Stdout

// Init configures the global zerolog logger. When cfg.File is set, output
// goes to a size-capped file instead of stdout; Writer() then returns that
// same sink so the HTTP request logger shares it.
func Init(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	sink = os.Stdout
	if path := strings.TrimSpace(cfg.File); path != "" {
		fw, ferr := newTruncatingFileWriter(path, cfg.MaxMB)
		if ferr == nil {
			sink = fw
		} else {
			log.Error().Err(ferr).Str("path", path).Msg("log file unavailable, using stdout")
		}
	}

	output := sink
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: sink}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the sink Init selected. Defaults to stdout so callers may
// use it before Init runs.
func Writer() io.Writer {
	return sink
}
