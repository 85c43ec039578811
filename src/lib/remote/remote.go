// Package remote runs commands inside the game server's workload.
package remote

import (
	"context"
	"fmt"

	"github.com/dranilew/minecraft-backup-flow/src/lib/logger"
	"github.com/dranilew/minecraft-backup-flow/src/lib/run"
)

const (
	// DefaultNamespace is the namespace the game server runs in.
	DefaultNamespace = "minecraft"
	// DefaultWorkload is the workload running the game server.
	DefaultWorkload = "deployment/minecraft-server"
	// DefaultKubectl is the kubectl executable.
	DefaultKubectl = "kubectl"
	// rconClient is the RCON client utility inside the game server container.
	rconClient = "rcon-cli"
)

// SaveAllCommand forces the server to flush the world to disk.
var SaveAllCommand = []string{rconClient, "save-all"}

// SayCommand broadcasts message to all players on the server.
func SayCommand(message string) []string {
	return []string{rconClient, "say", message}
}

// Target addresses a workload in the cluster.
type Target struct {
	// Namespace is the namespace of the workload.
	Namespace string
	// Workload is the workload name, such as deployment/minecraft-server.
	Workload string
	// Container selects a container. Empty means the workload's default.
	Container string
	// Kubeconfig is the kubeconfig path. Empty means kubectl's default.
	Kubeconfig string
	// Context is the kubeconfig context. Empty means the current context.
	Context string
}

func (t Target) String() string {
	if t.Container == "" {
		return fmt.Sprintf("%s/%s", t.Namespace, t.Workload)
	}
	return fmt.Sprintf("%s/%s[%s]", t.Namespace, t.Workload, t.Container)
}

// Output is the captured result of a remote command.
type Output struct {
	// ExitCode is the exit code of the command.
	ExitCode int
	// Stdout is the standard output of the command.
	Stdout string
	// Stderr is the standard error of the command.
	Stderr string
}

// Runner runs a command against a remote workload.
//
// A non-zero exit code is reported through Output and is not an error. An
// error means the command could not be run at all.
type Runner interface {
	Exec(ctx context.Context, target Target, command []string) (*Output, error)
}

// Kubectl is a Runner backed by `kubectl exec`.
type Kubectl struct {
	// Binary is the kubectl executable. Empty means DefaultKubectl.
	Binary string
}

// runCommand is replaced in tests.
var runCommand = run.WithContext

// Exec runs command in the target's primary container.
func (k *Kubectl) Exec(ctx context.Context, target Target, command []string) (*Output, error) {
	opts := run.Options{
		Name:       k.binary(),
		Args:       execArgs(target, command),
		InheritEnv: true,
		OutputType: run.OutputSeparate,
	}
	logger.Debugf("Running %s %v", opts.Name, opts.Args)

	res, err := runCommand(ctx, opts)
	if err != nil && !run.IsExitError(err) {
		return nil, fmt.Errorf("failed to exec %v on %s: %w", command, target, err)
	}
	return &Output{
		ExitCode: res.ExitCode,
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
	}, nil
}

func (k *Kubectl) binary() string {
	if k == nil || k.Binary == "" {
		return DefaultKubectl
	}
	return k.Binary
}

// execArgs builds the kubectl arguments for running command on target.
func execArgs(target Target, command []string) []string {
	var args []string
	if target.Kubeconfig != "" {
		args = append(args, "--kubeconfig", target.Kubeconfig)
	}
	if target.Context != "" {
		args = append(args, "--context", target.Context)
	}
	args = append(args, "exec", "-n", target.Namespace, target.Workload)
	if target.Container != "" {
		args = append(args, "-c", target.Container)
	}
	args = append(args, "--")
	return append(args, command...)
}
