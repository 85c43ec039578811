// Package backup saves the game world and reports the backup.
package backup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dranilew/minecraft-backup-flow/src/lib/logger"
	"github.com/dranilew/minecraft-backup-flow/src/lib/notify"
	"github.com/dranilew/minecraft-backup-flow/src/lib/remote"
)

const (
	// NamePrefix is the prefix of every backup name.
	NamePrefix = "minecraft_backup_"
	// TimestampLayout is the layout of the timestamp in a backup name.
	TimestampLayout = "20060102_150405"
	// announcement is broadcast in-game before the world is saved.
	announcement = "Creating backup..."
)

// Name returns the backup name for t. Names are unique to the second.
func Name(t time.Time) string {
	return NamePrefix + t.Format(TimestampLayout)
}

// Completed returns the message reported for a completed backup.
func Completed(name string) string {
	return fmt.Sprintf("Backup completed: %s", name)
}

// Flow saves the world on a remote game server and sends a notification.
type Flow struct {
	// Runner runs commands on the game server.
	Runner remote.Runner
	// Sink receives the backup result.
	Sink notify.Sink
	// Target is the game server workload.
	Target remote.Target
	// Now returns the current time. Nil means time.Now.
	Now func() time.Time
	// Strict fails the save when the save command exits non-zero. Without it,
	// the backup is reported as completed regardless of the exit code.
	Strict bool
	// Announce broadcasts a message in-game before saving.
	Announce bool
	// Status, if set, returns the number of players online.
	Status func(ctx context.Context) (int, error)
}

// Run saves the world, then sends the result to the sink. It returns the
// result of the save.
func (f *Flow) Run(ctx context.Context) (string, error) {
	result, err := f.SaveWorld(ctx)
	if err != nil {
		return "", err
	}

	ack, err := f.Sink.Send(ctx, result)
	if err != nil {
		logger.Warnf("Failed to send notification: %v", err)
	} else {
		logger.Debugf("%s", ack)
	}
	return result, nil
}

// SaveWorld forces the server to write its world to disk.
//
// Only a failure to run the command at all is returned as an error. A
// non-zero exit from the save command is logged and the backup is still
// reported as completed, unless Strict is set.
func (f *Flow) SaveWorld(ctx context.Context) (string, error) {
	name := Name(f.now())

	if f.Status != nil {
		if online, err := f.Status(ctx); err != nil {
			logger.Printf("Failed to get online players for %s: %v", f.Target, err)
		} else {
			logger.Printf("%d players online on %s", online, f.Target)
		}
	}

	if f.Announce {
		f.announce(ctx)
	}

	logger.Printf("Saving world on %s for %s", f.Target, name)
	out, err := f.Runner.Exec(ctx, f.Target, remote.SaveAllCommand)
	if err != nil {
		return "", fmt.Errorf("failed to save world: %w", err)
	}
	if out.ExitCode != 0 {
		stderr := strings.TrimSpace(out.Stderr)
		if f.Strict {
			return "", fmt.Errorf("save command on %s exited with status %d: %s", f.Target, out.ExitCode, stderr)
		}
		logger.Warnf("Save command on %s exited with status %d, reporting backup as completed anyway: %s", f.Target, out.ExitCode, stderr)
	} else {
		logger.Debugf("Save command output: %s", strings.TrimSpace(out.Stdout))
	}
	return Completed(name), nil
}

// announce tells players a backup is being created. Failures are only logged.
func (f *Flow) announce(ctx context.Context) {
	out, err := f.Runner.Exec(ctx, f.Target, remote.SayCommand(announcement))
	if err != nil {
		logger.Printf("Failed to notify server %s: %v", f.Target, err)
		return
	}
	if out.ExitCode != 0 {
		logger.Printf("Failed to notify server %s: exit status %d: %s", f.Target, out.ExitCode, strings.TrimSpace(out.Stderr))
	}
}

func (f *Flow) now() time.Time {
	if f.Now == nil {
		return time.Now()
	}
	return f.Now()
}
