// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package toolexec runs the external metadata tools under a deadline.
package toolexec

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single tool run; metadata tools can hang on
// malformed input.
const DefaultTimeout = 30 * time.Second

// Runner executes an external command and returns its standard output.
type Runner struct {
	Timeout time.Duration
}

// NewRunner creates a runner with the given timeout, or DefaultTimeout when
// timeout is not positive.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{Timeout: timeout}
}

// Available reports whether the named executable can be found.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

// Run executes name with args. Non-zero exits return the captured stdout
// alongside a KindFailed ToolError, since some tools still print usable output.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return nil, &ToolError{Tool: name, Kind: KindNotFound, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &ToolError{Tool: name, Kind: KindTimeout, Stderr: stderr.String(), Err: ctx.Err()}
	}
	return stdout.Bytes(), &ToolError{Tool: name, Kind: KindFailed, Stderr: stderr.String(), Err: err}
}
