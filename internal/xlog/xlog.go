// Package xlog wires a single leveled logging backend over stderr,
// shared by the pbf decoder (for spec §7's tolerated-and-logged
// conditions) and the cmd/osmpbf CLI. It is grounded in
// krypt.co/kr's own logging.go, which wraps github.com/op/go-logging
// the same way: one os.Stderr-backed backend, one environment
// variable to override the level.
package xlog

import (
	"os"
	"sync"

	"github.com/op/go-logging"
)

// LevelEnv is the environment variable that overrides the default log
// level, mirroring the teacher's KR_LOG_LEVEL.
const LevelEnv = "OSMPBF_LOG_LEVEL"

var format = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:.4s} %{module}: %{message}`,
)

var setupOnce sync.Once

func setup() {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	formatted := logging.NewBackendFormatter(backend, format)
	leveled := logging.AddModuleLevel(formatted)
	leveled.SetLevel(levelFromEnv(), "")
	logging.SetBackend(leveled)
}

// New returns a logger for the named module (e.g. "pbf", "osmpbf"),
// backed by stderr, at the level named by LevelEnv (default WARNING).
// The backing backend is configured once per process; every caller
// shares it.
func New(module string) *logging.Logger {
	setupOnce.Do(setup)
	return logging.MustGetLogger(module)
}

func levelFromEnv() logging.Level {
	switch os.Getenv(LevelEnv) {
	case "CRITICAL":
		return logging.CRITICAL
	case "ERROR":
		return logging.ERROR
	case "WARNING":
		return logging.WARNING
	case "NOTICE":
		return logging.NOTICE
	case "INFO":
		return logging.INFO
	case "DEBUG":
		return logging.DEBUG
	default:
		return logging.WARNING
	}
}
