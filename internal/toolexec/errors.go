// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package toolexec

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies why an external tool invocation failed.
type ErrorKind int

const (
	KindFailed   ErrorKind = iota // tool ran and exited non-zero or produced bad output
	KindNotFound                  // executable missing from PATH
	KindTimeout                   // tool exceeded its deadline and was killed
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindTimeout:
		return "timeout"
	default:
		return "failed"
	}
}

// ToolError wraps a failed external tool run with its classification and any
// diagnostic output the tool wrote to stderr.
type ToolError struct {
	Tool   string
	Kind   ErrorKind
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindNotFound:
		fmt.Fprintf(&b, "%s not found", e.Tool)
	case KindTimeout:
		fmt.Fprintf(&b, "%s timed out", e.Tool)
	default:
		fmt.Fprintf(&b, "%s failed", e.Tool)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	if msg := strings.TrimSpace(e.Stderr); msg != "" {
		fmt.Fprintf(&b, " (%s)", firstLine(msg))
	}
	return b.String()
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a ToolError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var te *ToolError
	return errors.As(err, &te) && te.Kind == kind
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
