// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package json

import (
	"encoding/json"
	"fmt"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/formatters"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/report"
)

// Formatter implements JSON output formatting
type Formatter struct{}

// NewFormatter creates a new JSON formatter
func NewFormatter() *Formatter {
	return &Formatter{}
}

func (f *Formatter) Name() string {
	return "json"
}

func (f *Formatter) Description() string {
	return "Full report records as a JSON array"
}

func (f *Formatter) FileExtension() string {
	return ".json"
}

// Format emits one record per file in scan order, indented two spaces.
func (f *Formatter) Format(reports []*report.Report, options formatters.FormatterOptions) (string, error) {
	if reports == nil {
		reports = []*report.Report{}
	}
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return "", fmt.Errorf("error formatting JSON: %w", err)
	}
	return string(data) + "\n", nil
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
