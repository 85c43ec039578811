// Package config loads the configuration of the backup flow.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dranilew/minecraft-backup-flow/src/lib/remote"
	"github.com/dranilew/minecraft-backup-flow/src/lib/status"
	"gopkg.in/yaml.v3"
)

// Config is the configuration file.
type Config struct {
	// Namespace is the namespace of the game server workload.
	Namespace string `yaml:"namespace"`
	// Workload is the game server workload, such as deployment/minecraft-server.
	Workload string `yaml:"workload"`
	// Container is the container to exec into. Empty means the default container.
	Container string `yaml:"container,omitempty"`
	// Kubeconfig is the kubeconfig file used by kubectl.
	Kubeconfig string `yaml:"kubeconfig,omitempty"`
	// Context is the kubeconfig context used by kubectl.
	Context string `yaml:"context,omitempty"`
	// Kubectl is the kubectl executable.
	Kubectl string `yaml:"kubectl"`
	// Strict fails the flow when the save command exits non-zero.
	Strict bool `yaml:"strict"`
	// Announce broadcasts an in-game message before saving.
	Announce bool `yaml:"announce"`
	// Timeout bounds the whole flow. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
	// SlackWebhook is a Slack incoming webhook to also notify.
	SlackWebhook string `yaml:"slack-webhook,omitempty"`
	// Bucket is a gs:// location to record notifications in.
	Bucket string `yaml:"bucket,omitempty"`
	// StatusHost is the host to query for online players. Empty disables it.
	StatusHost string `yaml:"status-host,omitempty"`
	// StatusPort is the port to query for online players.
	StatusPort uint16 `yaml:"status-port"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Namespace:  remote.DefaultNamespace,
		Workload:   remote.DefaultWorkload,
		Kubectl:    remote.DefaultKubectl,
		StatusPort: status.DefaultPort,
	}
}

// Load reads the configuration file at path over the defaults. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		return conf, nil
	}
	contentBytes, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return conf, nil
		}
		return nil, fmt.Errorf("failed to read configuration file: %v", err)
	}
	if err := yaml.Unmarshal(contentBytes, conf); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %q: %v", path, err)
	}
	return conf, nil
}

// Target returns the remote target described by the configuration.
func (c *Config) Target() remote.Target {
	return remote.Target{
		Namespace:  c.Namespace,
		Workload:   c.Workload,
		Container:  c.Container,
		Kubeconfig: c.Kubeconfig,
		Context:    c.Context,
	}
}
