//go:build linux

package logger

import (
	"fmt"
	"log"
	"log/syslog"
)

func initPlatformLogger(tag string) (*log.Logger, error) {
	syslogWriter, err := syslog.New(syslog.LOG_INFO, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to syslog: %w", err)
	}
	return log.New(syslogWriter, "", 0), nil
}
