// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package manifest reads the content-credential (C2PA) manifest store
// embedded in a media file.
package manifest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/toolexec"
)

// DefaultC2patoolPath is looked up on PATH.
const DefaultC2patoolPath = "c2patool"

// Reader returns the manifest store of a file as an ordered tree, or nil
// when the file carries no manifest.
type Reader interface {
	Read(ctx context.Context, path, mimeType string) (*metavalue.Value, error)
}

// absenceMessages are the c2patool diagnostics that mean the file simply
// has no manifest store. Compared lower-cased.
var absenceMessages = []string{
	"no claim found",
	"no c2pa manifest",
	"manifestnotfound",
	"jumbfnotfound",
}

// C2patoolReader shells out to c2patool, which prints the manifest store
// report as JSON.
type C2patoolReader struct {
	path   string
	runner *toolexec.Runner
}

// NewC2patoolReader creates a reader for the c2patool at path.
func NewC2patoolReader(path string, runner *toolexec.Runner) *C2patoolReader {
	if path == "" {
		path = DefaultC2patoolPath
	}
	if runner == nil {
		runner = toolexec.NewRunner(0)
	}
	return &C2patoolReader{path: path, runner: runner}
}

// Read implements Reader. A file without a manifest yields (nil, nil).
func (r *C2patoolReader) Read(ctx context.Context, path, mimeType string) (*metavalue.Value, error) {
	if mimeType == "" {
		return nil, nil
	}

	out, err := r.runner.Run(ctx, r.path, path)
	if err != nil {
		if isAbsence(err) {
			return nil, nil
		}
		return nil, err
	}
	return parseReport(out)
}

// parseReport decodes c2patool output. Empty output or an empty store is
// treated as no manifest.
func parseReport(out []byte) (*metavalue.Value, error) {
	if strings.TrimSpace(string(out)) == "" {
		return nil, nil
	}
	tree, err := metavalue.Parse(out)
	if err != nil {
		return nil, fmt.Errorf("parsing c2patool output: %w", err)
	}
	// Some builds print the report as a JSON string holding the JSON.
	if s, ok := tree.AsString(); ok {
		tree, err = metavalue.Parse([]byte(s))
		if err != nil {
			return nil, fmt.Errorf("parsing c2patool output: %w", err)
		}
	}
	if !tree.Truthy() {
		return nil, nil
	}
	return &tree, nil
}

func isAbsence(err error) bool {
	var te *toolexec.ToolError
	if !errors.As(err, &te) || te.Kind != toolexec.KindFailed {
		return false
	}
	msg := strings.ToLower(te.Stderr)
	for _, m := range absenceMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
