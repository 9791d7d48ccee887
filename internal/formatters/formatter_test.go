// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package formatters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/formatters"
	_ "github.com/abrignoni/AI-Provenance-Scanner/internal/formatters/json"
	_ "github.com/abrignoni/AI-Provenance-Scanner/internal/formatters/text"
	_ "github.com/abrignoni/AI-Provenance-Scanner/internal/formatters/yaml"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/report"
)

func TestDefaultRegistry(t *testing.T) {
	assert.Equal(t, []string{"json", "text", "yaml"}, formatters.List())

	f, ok := formatters.Get("yaml")
	require.True(t, ok)
	assert.Equal(t, ".yaml", f.FileExtension())
}

func TestExport(t *testing.T) {
	reports := []*report.Report{{File: "a.jpg", C2PAOnly: true}}

	out, err := formatters.Export("json", reports, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, out, `"file": "a.jpg"`)

	_, err = formatters.Export("sarif", reports, formatters.FormatterOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format 'sarif'. Available formats: json, text, yaml")
}
