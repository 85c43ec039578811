//go:build !linux

package logger

import (
	"fmt"
	"log"
)

func initPlatformLogger(string) (*log.Logger, error) {
	return nil, fmt.Errorf("platform logger not implemented")
}
