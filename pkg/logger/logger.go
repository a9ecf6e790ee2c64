// Package logger holds the shared application logger. Packages that log
// on their own import logrus directly; this instance is for wiring code
// that wants the configured output and level.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Log *logrus.Logger

// InitLogger configures Log with JSON output on stdout so log lines are
// machine-parseable in aggregated environments.
func InitLogger() {
	Log = logrus.New()
	Log.Out = os.Stdout
	Log.SetFormatter(&logrus.JSONFormatter{})
	Log.SetLevel(logrus.InfoLevel)
}
