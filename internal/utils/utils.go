package utils

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// SetUpLogrus configures the standard logger and returns the entry the
// engine logs through.
func SetUpLogrus(out io.Writer, level string) (*logrus.Entry, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:          true,
		TimestampFormat:        "2006-01-02 15:04:05.000",
		DisableLevelTruncation: true,
		PadLevelText:           true,
	})
	logrus.SetOutput(out)
	logrus.SetLevel(lvl)

	return logrus.WithField("component", "rudp"), nil
}
