// Package main is the command line tool that saves the game world and reports
// the backup.
package main

import (
	"context"

	"github.com/dranilew/minecraft-backup-flow/src/lib/logger"
)

// loggerErr is why the platform logger is unavailable, if it is. Logs still go
// to stderr.
var loggerErr error

func main() {
	loggerErr = logger.Init("worldbackup")

	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		logger.Fatalf("Failed to execute: %v", err)
	}
}
