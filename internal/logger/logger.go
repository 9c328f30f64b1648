package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Leveled logger shared by the server and its packages.
// Init(level, json) is called once during startup; the default is info/text.

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// Init sets the level from any name logrus.ParseLevel accepts (case-insensitive).
// Unknown values fall back to info.
func Init(level string, json bool) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
	if json {
		base.SetFormatter(&logrus.JSONFormatter{})
	} else {
		base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// LevelString returns the current level as text.
func LevelString() string {
	if base.GetLevel() == logrus.WarnLevel {
		return "warn"
	}
	return base.GetLevel().String()
}

// With returns an entry carrying the given fields.
func With(fields map[string]any) *logrus.Entry {
	return base.WithFields(logrus.Fields(fields))
}

func Debugf(format string, v ...any) { base.Debugf(format, v...) }
func Infof(format string, v ...any)  { base.Infof(format, v...) }
func Warnf(format string, v ...any)  { base.Warnf(format, v...) }
func Errorf(format string, v ...any) { base.Errorf(format, v...) }
func Fatalf(format string, v ...any) { base.Fatalf(format, v...) }

func Println(v ...any) { base.Infoln(v...) }
