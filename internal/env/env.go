// SPDX-License-Identifier:Apache-2.0

// Package env reads the settings that may come from the environment.
package env

import (
	"os"
	"strings"
)

const (
	SocketVar   = "VPPCTL_SOCKET"
	LogLevelVar = "VPPCTL_LOG_LEVEL"
)

// Socket returns the engine socket path from the environment.
func Socket() (string, bool) {
	return lookup(SocketVar)
}

// LogLevel returns the log level from the environment.
func LogLevel() (string, bool) {
	return lookup(LogLevelVar)
}

func lookup(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	return v, v != ""
}
