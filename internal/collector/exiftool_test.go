// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/toolexec"
)

func TestParseExiftoolJSON(t *testing.T) {
	out := []byte(`[{
		"SourceFile": "a.jpg",
		"ExifTool:Warning": "Invalid EXIF text encoding",
		"IPTC:By-line": "Jane Doe",
		"XMP-dc:Creator": ["Jane", "John"],
		"XMP-iptcExt:LocationCreated": {"City": "Paris"}
	}]`)

	result, err := parseExiftoolJSON(out)

	require.NoError(t, err)
	obj, ok := result.Tags.AsObject()
	require.True(t, ok)
	assert.Equal(t, []string{"ExifTool:Warning", "IPTC:By-line", "XMP-dc:Creator", "XMP-iptcExt:LocationCreated"}, obj.Keys())
	assert.Equal(t, []string{"Invalid EXIF text encoding"}, result.Warnings)

	creator, _ := obj.Get("XMP-dc:Creator")
	assert.Equal(t, `["Jane","John"]`, creator.String())
}

func TestParseExiftoolJSON_Errors(t *testing.T) {
	_, err := parseExiftoolJSON([]byte(`{"SourceFile": "a.jpg"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a JSON array")

	_, err = parseExiftoolJSON([]byte(`[{"a": `))
	require.Error(t, err)
}

// fakeExiftool writes a shell script standing in for exiftool.
func fakeExiftool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX shell scripts")
	}
	path := filepath.Join(t.TempDir(), "exiftool")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestExiftoolCollector_Collect(t *testing.T) {
	tool := fakeExiftool(t, `echo '[{"SourceFile": "x", "IPTC:Credit": "Newsroom"}]'`)
	c := NewExiftoolCollector(tool, toolexec.NewRunner(5*time.Second))

	result, err := c.Collect(context.Background(), "x.jpg")

	require.NoError(t, err)
	obj, _ := result.Tags.AsObject()
	assert.Equal(t, []string{"IPTC:Credit"}, obj.Keys())
	assert.Empty(t, result.Warnings)
}

func TestExiftoolCollector_PartialFailureKeepsTags(t *testing.T) {
	tool := fakeExiftool(t, `echo '[{"SourceFile": "x", "IPTC:Credit": "Newsroom"}]'; echo 'Error: truncated file' >&2; exit 1`)
	c := NewExiftoolCollector(tool, toolexec.NewRunner(5*time.Second))

	result, err := c.Collect(context.Background(), "x.jpg")

	require.NoError(t, err)
	obj, _ := result.Tags.AsObject()
	assert.True(t, obj.Has("IPTC:Credit"))
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "Error: truncated file")
}

func TestExiftoolCollector_Failure(t *testing.T) {
	tool := fakeExiftool(t, `echo 'File not found' >&2; exit 1`)
	c := NewExiftoolCollector(tool, toolexec.NewRunner(5*time.Second))

	_, err := c.Collect(context.Background(), "missing.jpg")

	require.Error(t, err)
	assert.True(t, toolexec.IsKind(err, toolexec.KindFailed))
}

func TestExiftoolCollector_NotInstalled(t *testing.T) {
	c := NewExiftoolCollector("/nonexistent/exiftool", nil)

	_, err := c.Collect(context.Background(), "x.jpg")

	require.Error(t, err)
	assert.True(t, toolexec.IsKind(err, toolexec.KindNotFound))
}
