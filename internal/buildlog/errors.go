// Package buildlog implements the engine's error taxonomy and its
// structured, colorized run log.
package buildlog

import (
	"errors"
	"fmt"
)

// ConfigError is a fatal, startup-time failure: an unknown platform, or
// CPP/LINK invoked on an unsupported OS. Never recoverable mid-run.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "config error: " + e.Msg }

// NewConfigError builds a ConfigError.
func NewConfigError(format string, args ...any) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// BuildError is an expected, task-scoped failure: non-zero exit, spawn
// error, missing file, an unresolved abstract target, or a generated-header
// invariant violation. It is never fatal to the engine itself; the
// scheduler catches it, marks the owning task failed, and summarizes it.
type BuildError struct {
	Msg string
}

func (e *BuildError) Error() string { return e.Msg }

// NewBuildError builds a BuildError.
func NewBuildError(format string, args ...any) error {
	return &BuildError{Msg: fmt.Sprintf(format, args...)}
}

// AsBuildError reports whether err is (or wraps) a *BuildError.
func AsBuildError(err error) (*BuildError, bool) {
	var be *BuildError
	ok := errors.As(err, &be)
	return be, ok
}
