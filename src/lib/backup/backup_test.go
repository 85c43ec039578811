package backup

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/dranilew/minecraft-backup-flow/src/lib/notify"
	"github.com/dranilew/minecraft-backup-flow/src/lib/remote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var completedRegex = regexp.MustCompile(`^Backup completed: minecraft_backup_\d{8}_\d{6}$`)

// fakeRunner records every command and replies with a fixed output or error.
type fakeRunner struct {
	out      *remote.Output
	err      error
	commands [][]string
	targets  []remote.Target
}

func (f *fakeRunner) Exec(_ context.Context, target remote.Target, command []string) (*remote.Output, error) {
	f.commands = append(f.commands, command)
	f.targets = append(f.targets, target)
	if f.err != nil {
		return nil, f.err
	}
	return f.out, nil
}

type fakeSink struct {
	got []string
	err error
}

func (f *fakeSink) Send(_ context.Context, message string) (string, error) {
	f.got = append(f.got, message)
	if f.err != nil {
		return "", f.err
	}
	return notify.Sent, nil
}

func fixedTime() time.Time {
	return time.Date(2026, 10, 18, 14, 3, 9, 0, time.Local)
}

func newFlow(runner remote.Runner, sink notify.Sink) *Flow {
	return &Flow{
		Runner: runner,
		Sink:   sink,
		Target: remote.Target{Namespace: remote.DefaultNamespace, Workload: remote.DefaultWorkload},
		Now:    fixedTime,
	}
}

func TestName(t *testing.T) {
	assert.Equal(t, "minecraft_backup_20261018_140309", Name(fixedTime()))
}

func TestNameGranularity(t *testing.T) {
	base := fixedTime()
	assert.NotEqual(t, Name(base), Name(base.Add(time.Second)))
	assert.Equal(t, Name(base), Name(base.Add(999*time.Millisecond)))
}

func TestRunSuccess(t *testing.T) {
	runner := &fakeRunner{out: &remote.Output{Stdout: "Saved the game"}}
	sink := &fakeSink{}

	got, err := newFlow(runner, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Backup completed: minecraft_backup_20261018_140309", got)
	assert.Equal(t, []string{got}, sink.got)
	assert.Equal(t, [][]string{{"rcon-cli", "save-all"}}, runner.commands)
	assert.Equal(t, "minecraft", runner.targets[0].Namespace)
	assert.Equal(t, "deployment/minecraft-server", runner.targets[0].Workload)
}

func TestRunDefaultClock(t *testing.T) {
	flow := newFlow(&fakeRunner{out: &remote.Output{}}, &fakeSink{})
	flow.Now = nil

	got, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, completedRegex, got)
}

func TestRunNonZeroExitStillCompletes(t *testing.T) {
	runner := &fakeRunner{out: &remote.Output{ExitCode: 1, Stderr: "Failed to connect to RCON"}}
	sink := &fakeSink{}

	got, err := newFlow(runner, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, completedRegex, got)
	assert.Equal(t, []string{got}, sink.got)
}

func TestRunStrictNonZeroExitFails(t *testing.T) {
	runner := &fakeRunner{out: &remote.Output{ExitCode: 1, Stderr: "Failed to connect to RCON\n"}}
	sink := &fakeSink{}
	flow := newFlow(runner, sink)
	flow.Strict = true

	got, err := flow.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 1")
	assert.Contains(t, err.Error(), "Failed to connect to RCON")
	assert.Empty(t, got)
	assert.Empty(t, sink.got)
}

func TestRunTransportFaultPropagates(t *testing.T) {
	fault := errors.New("connection refused")
	sink := &fakeSink{}

	got, err := newFlow(&fakeRunner{err: fault}, sink).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, fault)
	assert.Empty(t, got)
	assert.Empty(t, sink.got)
}

func TestRunSinkErrorDoesNotChangeResult(t *testing.T) {
	sink := &fakeSink{err: errors.New("webhook down")}

	got, err := newFlow(&fakeRunner{out: &remote.Output{}}, sink).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Backup completed: minecraft_backup_20261018_140309", got)
}

func TestRunWithStdoutSink(t *testing.T) {
	var buf bytes.Buffer

	got, err := newFlow(&fakeRunner{out: &remote.Output{}}, &notify.Stdout{W: &buf}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Notification: "+got+"\n", buf.String())
}

func TestRunAnnounce(t *testing.T) {
	runner := &fakeRunner{out: &remote.Output{}}
	flow := newFlow(runner, &fakeSink{})
	flow.Announce = true

	_, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"rcon-cli", "say", "Creating backup..."},
		{"rcon-cli", "save-all"},
	}, runner.commands)
}

func TestRunStatus(t *testing.T) {
	var called bool
	flow := newFlow(&fakeRunner{out: &remote.Output{}}, &fakeSink{})
	flow.Status = func(context.Context) (int, error) {
		called = true
		return 0, errors.New("no status")
	}

	got, err := flow.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, called)
	assert.Regexp(t, completedRegex, got)
}

func TestSaveWorldDoesNotNotify(t *testing.T) {
	sink := &fakeSink{}

	got, err := newFlow(&fakeRunner{out: &remote.Output{}}, sink).SaveWorld(context.Background())
	require.NoError(t, err)
	assert.Regexp(t, completedRegex, got)
	assert.Empty(t, sink.got)
}
