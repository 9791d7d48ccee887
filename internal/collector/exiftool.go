// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"context"
	"fmt"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/toolexec"
)

// DefaultExiftoolPath is looked up on PATH.
const DefaultExiftoolPath = "exiftool"

// exiftoolArgs request JSON keyed by family-1 group ("XMP-dc:Creator"),
// structured XMP values, and tolerance of minor errors.
var exiftoolArgs = []string{
	"-json",
	"-G1",
	"-struct",
	"-m",
	"-api", "LargeFileSupport=1",
}

// exiftool reports its own problems as tags in these groups.
var exiftoolDiagnosticTags = []string{"ExifTool:Warning", "ExifTool:Error"}

// ExiftoolCollector runs the exiftool executable.
type ExiftoolCollector struct {
	path   string
	runner *toolexec.Runner
}

// NewExiftoolCollector creates a collector for the exiftool at path.
func NewExiftoolCollector(path string, runner *toolexec.Runner) *ExiftoolCollector {
	if runner == nil {
		runner = toolexec.NewRunner(0)
	}
	return &ExiftoolCollector{path: path, runner: runner}
}

func (c *ExiftoolCollector) Name() string {
	return "exiftool"
}

// Collect implements Collector.
func (c *ExiftoolCollector) Collect(ctx context.Context, path string) (*Result, error) {
	args := append(append([]string{}, exiftoolArgs...), "--", path)
	out, runErr := c.runner.Run(ctx, c.path, args...)
	if runErr != nil && len(out) == 0 {
		return nil, runErr
	}

	result, err := parseExiftoolJSON(out)
	if err != nil {
		if runErr != nil {
			return nil, runErr
		}
		return nil, fmt.Errorf("parsing exiftool output: %w", err)
	}
	// exiftool exits non-zero for files it could only partly read.
	if runErr != nil {
		result.Warnings = append(result.Warnings, runErr.Error())
	}
	return result, nil
}

// parseExiftoolJSON merges the per-file objects of exiftool's JSON array into
// one ordered tag map.
func parseExiftoolJSON(data []byte) (*Result, error) {
	doc, err := metavalue.Parse(data)
	if err != nil {
		return nil, err
	}
	entries, ok := doc.AsArray()
	if !ok {
		return nil, fmt.Errorf("expected a JSON array, got %s", doc.Kind())
	}

	tags := metavalue.NewObject()
	var warnings []string
	for _, entry := range entries {
		obj, ok := entry.AsObject()
		if !ok {
			continue
		}
		for _, m := range obj.Members() {
			if m.Key == "SourceFile" {
				continue
			}
			tags.Set(m.Key, m.Value)
		}
		for _, name := range exiftoolDiagnosticTags {
			if v, ok := obj.Get(name); ok {
				warnings = append(warnings, v.String())
			}
		}
	}
	return &Result{Tags: metavalue.ObjectValue(tags), Warnings: warnings}, nil
}
