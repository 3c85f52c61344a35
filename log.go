package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// setupLog routes logging to the file named by LECTERN_LOGFILE when debug
// is on, and silences it otherwise. A TUI cannot share stderr with its
// own output.
func setupLog() (func() error, error) {
	if viper.GetBool("debug") || os.Getenv("LECTERN_DEBUG") != "" {
		logFile := os.Getenv("LECTERN_LOGFILE")
		if logFile == "" {
			return nil, fmt.Errorf("debug logging requested but LECTERN_LOGFILE is not set")
		}
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("unable to open log file: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	log.SetOutput(io.Discard)
	return func() error { return nil }, nil
}
