// Package logger is a logging library for logging in the backup flow.
//
// Logs never go to stdout, since stdout is where notifications are written.
package logger

import (
	"io"
	"log"
	"os"
	"sync"
)

var (
	// loggers is the list of supported loggers.
	loggers   []*log.Logger
	loggersMu sync.Mutex
	// debug indicates whether to print debug logs or not.
	debug bool
	// osExit and exit are split so tests can stub exit.
	osExit = os.Exit
	exit   = osExit
)

// Init initializes the loggers. Logs are always written to stderr and any extra
// writers, and to the platform logger where one is available.
func Init(tag string, extra ...io.Writer) error {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	loggers = nil
	for _, w := range append([]io.Writer{os.Stderr}, extra...) {
		loggers = append(loggers, log.New(w, tag+": ", log.LstdFlags))
	}
	platform, err := initPlatformLogger(tag)
	if err != nil {
		return err
	}
	loggers = append(loggers, platform)
	return nil
}

// SetVerbose enables or disables debug logs.
func SetVerbose(v bool) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	debug = v
}

// Printf prints to each of the loggers.
func Printf(message string, v ...any) {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, logger := range loggers {
		logger.Printf(message, v...)
	}
}

// Warnf prints with a warning prefix.
func Warnf(message string, v ...any) {
	Printf("WARNING: "+message, v...)
}

// Fatalf prints before exiting.
func Fatalf(message string, v ...any) {
	Printf(message, v...)
	exit(1)
}

// Debugf prints only if verbose logging is enabled.
func Debugf(message string, v ...any) {
	loggersMu.Lock()
	enabled := debug
	loggersMu.Unlock()
	if enabled {
		Printf(message, v...)
	}
}
