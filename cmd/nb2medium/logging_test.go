package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewCLILogger(t *testing.T) {
	tests := []struct {
		name     string
		flags    commonFlags
		envLevel string
		want     logrus.Level
	}{
		{name: "default", want: logrus.InfoLevel},
		{name: "verbose", flags: commonFlags{verbose: true}, want: logrus.DebugLevel},
		{name: "quiet", flags: commonFlags{quiet: true}, want: logrus.ErrorLevel},
		{name: "env overrides flags", flags: commonFlags{quiet: true}, envLevel: "trace", want: logrus.TraceLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(LogLevelEnv, tt.envLevel)

			log, err := newCLILogger(&bytes.Buffer{}, tt.flags)
			if err != nil {
				t.Fatalf("newCLILogger() error = %v", err)
			}
			if log.GetLevel() != tt.want {
				t.Errorf("level = %v, want %v", log.GetLevel(), tt.want)
			}
		})
	}
}

func TestNewCLILogger_InvalidLevel(t *testing.T) {
	t.Setenv(LogLevelEnv, "loud")

	_, err := newCLILogger(&bytes.Buffer{}, commonFlags{})
	if !errors.Is(err, ErrUsage) {
		t.Errorf("error = %v, want ErrUsage", err)
	}
}
