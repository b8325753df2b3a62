package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New builds the process logger. Output goes to stdout as JSON and, when
// logstashAddr is set, is mirrored to Logstash. The returned closer releases
// the Logstash connection.
func New(level, logstashAddr string) (zerolog.Logger, io.Closer) {
	return newLogger(os.Stdout, level, logstashAddr)
}

func newLogger(out io.Writer, level, logstashAddr string) (zerolog.Logger, io.Closer) {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var closer io.Closer = nopCloser{}
	writer := out
	if strings.TrimSpace(logstashAddr) != "" {
		if ls, err := NewLogstashWriter(logstashAddr); err == nil {
			writer = zerolog.MultiLevelWriter(out, ls)
			closer = ls
		}
	}

	logger := zerolog.New(writer).Level(lvl).With().Timestamp().Str("service", "todo-api").Logger()
	log.Logger = logger
	zerolog.DefaultContextLogger = &logger
	return logger, closer
}
