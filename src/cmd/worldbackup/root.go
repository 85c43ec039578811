package main

import (
	"context"
	"errors"
	"time"

	"github.com/dranilew/minecraft-backup-flow/src/lib/backup"
	"github.com/dranilew/minecraft-backup-flow/src/lib/config"
	"github.com/dranilew/minecraft-backup-flow/src/lib/logger"
	"github.com/dranilew/minecraft-backup-flow/src/lib/notify"
	"github.com/dranilew/minecraft-backup-flow/src/lib/remote"
	"github.com/dranilew/minecraft-backup-flow/src/lib/status"
	"github.com/spf13/cobra"
)

// flags holds the command line flags. Flags that are set override the
// configuration file.
type flags struct {
	configFile   string
	namespace    string
	workload     string
	container    string
	kubeconfig   string
	kubeContext  string
	kubectl      string
	strict       bool
	announce     bool
	timeout      time.Duration
	slackWebhook string
	bucket       string
	statusHost   string
	statusPort   uint16
	verbose      bool
}

// newBucket is replaced in tests.
var newBucket = func(ctx context.Context, url string) (notify.Closer, error) {
	return notify.NewBucket(ctx, url)
}

// newRunner is replaced in tests.
var newRunner = func(conf *config.Config) remote.Runner {
	return &remote.Kubectl{Binary: conf.Kubectl}
}

func newRootCommand() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "worldbackup",
		Short:         "Saves the Minecraft world",
		Long:          "Forces the Minecraft server running in the cluster to save its world to disk, then sends a backup notification.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBackup(cmd, f)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configFile, "config", "", "Path to a YAML configuration file. Flags override values from the file.")
	fs.StringVar(&f.namespace, "namespace", remote.DefaultNamespace, "Namespace of the game server workload.")
	fs.StringVar(&f.workload, "workload", remote.DefaultWorkload, "Game server workload to exec into.")
	fs.StringVar(&f.container, "container", "", "Container to exec into. Defaults to the workload's default container.")
	fs.StringVar(&f.kubeconfig, "kubeconfig", "", "Path to the kubeconfig file used by kubectl.")
	fs.StringVar(&f.kubeContext, "context", "", "Kubeconfig context used by kubectl.")
	fs.StringVar(&f.kubectl, "kubectl", remote.DefaultKubectl, "kubectl executable.")
	fs.BoolVar(&f.strict, "strict", false, "Fail if the save command exits non-zero instead of reporting the backup as completed.")
	fs.BoolVar(&f.announce, "announce", false, "Broadcast a message to players before saving.")
	fs.DurationVar(&f.timeout, "timeout", 0, "Timeout for the whole flow. Zero means no timeout.")
	fs.StringVar(&f.slackWebhook, "slack-webhook", "", "Slack incoming webhook URL to also send the notification to.")
	fs.StringVar(&f.bucket, "bucket", "", "gs:// location in which to record notifications.")
	fs.StringVar(&f.statusHost, "status-host", "", "Host to query for the number of online players before saving.")
	fs.Uint16Var(&f.statusPort, "status-port", status.DefaultPort, "Port to query for the number of online players.")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "Whether to log more than usual.")
	return cmd
}

// loadConfig reads the configuration file and applies the flags that were set.
func loadConfig(cmd *cobra.Command, f *flags) (*config.Config, error) {
	conf, err := config.Load(f.configFile)
	if err != nil {
		return nil, err
	}

	fs := cmd.Flags()
	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("namespace", func() { conf.Namespace = f.namespace })
	set("workload", func() { conf.Workload = f.workload })
	set("container", func() { conf.Container = f.container })
	set("kubeconfig", func() { conf.Kubeconfig = f.kubeconfig })
	set("context", func() { conf.Context = f.kubeContext })
	set("kubectl", func() { conf.Kubectl = f.kubectl })
	set("strict", func() { conf.Strict = f.strict })
	set("announce", func() { conf.Announce = f.announce })
	set("timeout", func() { conf.Timeout = f.timeout })
	set("slack-webhook", func() { conf.SlackWebhook = f.slackWebhook })
	set("bucket", func() { conf.Bucket = f.bucket })
	set("status-host", func() { conf.StatusHost = f.statusHost })
	set("status-port", func() { conf.StatusPort = f.statusPort })
	return conf, nil
}

// runBackup runs the backup flow once.
func runBackup(cmd *cobra.Command, f *flags) error {
	logger.SetVerbose(f.verbose)
	if loggerErr != nil {
		logger.Debugf("Logging to stderr only: %v", loggerErr)
	}
	conf, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	logger.Debugf("Configuration: %+v", *conf)

	ctx := cmd.Context()
	if conf.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, conf.Timeout)
		defer cancel()
	}

	sinks := notify.Multi{&notify.Stdout{W: cmd.OutOrStdout()}}
	if conf.SlackWebhook != "" {
		sinks = append(sinks, &notify.Slack{WebhookURL: conf.SlackWebhook})
	}
	if conf.Bucket != "" {
		bucket, err := newBucket(ctx, conf.Bucket)
		switch {
		case errors.Is(err, notify.ErrInvalidBucketURL):
			return err
		case err != nil:
			logger.Warnf("Failed to set up bucket notifications: %v", err)
		default:
			defer bucket.Close()
			sinks = append(sinks, bucket)
		}
	}

	flow := &backup.Flow{
		Runner:   newRunner(conf),
		Sink:     sinks,
		Target:   conf.Target(),
		Strict:   conf.Strict,
		Announce: conf.Announce,
	}
	if conf.StatusHost != "" {
		host, port := conf.StatusHost, conf.StatusPort
		flow.Status = func(ctx context.Context) (int, error) {
			return status.Online(ctx, host, port)
		}
	}

	result, err := flow.Run(ctx)
	if err != nil {
		return err
	}
	logger.Printf("%s", result)
	return nil
}
