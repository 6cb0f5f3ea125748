// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package vke

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyRun is returned by Run when it is called a second time.
	ErrAlreadyRun = errors.New("vke: engine already run")

	// ErrNotStarted is returned by operations that need a subsystem the
	// startup sequence has not brought up yet.
	ErrNotStarted = errors.New("vke: engine not started")
)

// StageError reports the lifecycle stage whose subscriber failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("vke: stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
