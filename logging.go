package main

import (
	"fmt"
	"log"
	"os"
)

// setupLogging sends the stdlib logger to a file so CLI output stays clean.
// The previous run's log is kept as a single ".1" backup. The returned file
// is closed by the caller on shutdown.
func setupLogging(path string) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}

	if err := rotateLogFile(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	log.SetOutput(f)
	return f, nil
}

// rotateLogFile moves an existing log to path+".1", dropping the older backup.
func rotateLogFile(path string) error {
	_ = os.Remove(path + ".1")

	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := os.Rename(path, path+".1"); err != nil {
		return fmt.Errorf("failed to rotate existing log: %w", err)
	}
	return nil
}
