package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/alnah/go-nb2medium/internal/logger"
)

// LogLevelEnv overrides the level chosen by --verbose and --quiet.
const LogLevelEnv = "LOG_LEVEL"

// newCLILogger returns the logger commands hand to the library.
// Info by default, debug with --verbose, error with --quiet.
func newCLILogger(w io.Writer, f commonFlags) (*logrus.Logger, error) {
	level := "info"
	switch {
	case f.verbose:
		level = "debug"
	case f.quiet:
		level = "error"
	}
	if v := os.Getenv(LogLevelEnv); v != "" {
		level = v
	}

	log, err := logger.New(w, level)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUsage, LogLevelEnv, err)
	}
	return log, nil
}
