// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/config"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/paths"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps user and project config files out of the run.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(paths.ConfigDirEnv, filepath.Join(dir, "config"))
	chdir(t, dir)
	return dir
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut, false)
	return code, out.String(), errOut.String()
}

func TestParseInterspersed(t *testing.T) {
	f := &cliFlags{}
	fs := newFlagSet(f, io.Discard)

	positional, err := parseInterspersed(fs, []string{"photo.jpg", "--json", "--timeout", "5s"})
	require.NoError(t, err)
	assert.Equal(t, []string{"photo.jpg"}, positional)
	assert.True(t, f.jsonOutput)
	assert.Equal(t, 5*time.Second, f.timeout)
	assert.True(t, isFlagSet(fs, "json"))
	assert.False(t, isFlagSet(fs, "format"))
}

func TestParseInterspersed_DoubleDash(t *testing.T) {
	f := &cliFlags{}
	fs := newFlagSet(f, io.Discard)

	positional, err := parseInterspersed(fs, []string{"--", "--json"})
	require.NoError(t, err)
	assert.Equal(t, []string{"--json"}, positional)
	assert.False(t, f.jsonOutput)
}

func TestScanTarget(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		args    []string
		want    string
		wantErr bool
	}{
		{name: "flag", path: "a.jpg", want: "a.jpg"},
		{name: "positional", args: []string{"b.jpg"}, want: "b.jpg"},
		{name: "neither", want: ""},
		{name: "both", path: "a.jpg", args: []string{"b.jpg"}, wantErr: true},
		{name: "two positional", args: []string{"a.jpg", "b.jpg"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scanTarget(&cliFlags{path: tt.path}, tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveConfiguration_Layering(t *testing.T) {
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	cfg.Defaults.Format = "yaml"
	cfg.Defaults.ExcludePatterns = []string{"*.tmp"}
	cfg.Tools.Timeout = 10 * time.Second

	t.Run("config defaults", func(t *testing.T) {
		f := &cliFlags{}
		fs := newFlagSet(f, io.Discard)
		require.NoError(t, fs.Parse(nil))

		s := resolveConfiguration(fs, f, cfg, nil)
		assert.Equal(t, "yaml", s.format)
		assert.Equal(t, "auto", s.collector)
		assert.Equal(t, 10*time.Second, s.timeout)
		assert.Equal(t, []string{"*.tmp"}, s.excludePatterns)
		assert.False(t, s.c2paOnly)
	})

	t.Run("profile over config", func(t *testing.T) {
		f := &cliFlags{}
		fs := newFlagSet(f, io.Discard)
		require.NoError(t, fs.Parse(nil))

		s := resolveConfiguration(fs, f, cfg, cfg.GetProfile("forensic"))
		assert.Equal(t, "json", s.format)
		assert.Equal(t, "exiftool", s.collector)
		assert.True(t, s.flattened)
	})

	t.Run("flags over profile", func(t *testing.T) {
		f := &cliFlags{}
		fs := newFlagSet(f, io.Discard)
		require.NoError(t, fs.Parse([]string{"--format", "text", "--collector", "native", "--flattened=false"}))

		s := resolveConfiguration(fs, f, cfg, cfg.GetProfile("forensic"))
		assert.Equal(t, "text", s.format)
		assert.Equal(t, "native", s.collector)
		assert.False(t, s.flattened)
	})

	t.Run("json alias", func(t *testing.T) {
		f := &cliFlags{}
		fs := newFlagSet(f, io.Discard)
		require.NoError(t, fs.Parse([]string{"--json"}))

		s := resolveConfiguration(fs, f, cfg, nil)
		assert.Equal(t, "json", s.format)
	})
}

func TestRun_Version(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI(t, "--version")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "provenance-scan")
}

func TestRun_Help(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI(t, "--help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "USAGE:")
	assert.Contains(t, stdout, "--c2pa-only")
}

func TestRun_ListProfiles(t *testing.T) {
	isolate(t)
	code, stdout, _ := runCLI(t, "--list-profiles")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "Available profiles:")
	assert.Contains(t, stdout, "  - forensic: ")
	assert.Contains(t, stdout, "  - quick: ")
}

func TestRun_UnknownProfile(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t, "--profile", "missing", "x.jpg")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "profile 'missing' not found")
}

func TestRun_BadConfigFallsBack(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("defaults:\n  format: xml\n"), 0600))

	code, stdout, stderr := runCLI(t, "--config", bad, "--list-profiles")
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Warning: Error loading config file")
	assert.Contains(t, stderr, "Using default configuration")
	assert.Contains(t, stdout, "forensic")
}

func TestRun_InvalidPath(t *testing.T) {
	dir := isolate(t)
	missing := filepath.Join(dir, "nope.jpg")

	code, stdout, stderr := runCLI(t, "--path", missing)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Equal(t, "Error: invalid path: "+missing+"\n", stderr)
}

func TestRun_MissingPath(t *testing.T) {
	isolate(t)
	code, _, stderr := runCLI(t)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "a path to scan is required")
}

func TestRun_C2PAOnlyJSON(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(file, []byte("plain text\n"), 0600))

	code, stdout, _ := runCLI(t, "--c2pa-only", "--json", "--c2patool", filepath.Join(dir, "no-such-c2patool"), file)
	require.Equal(t, 0, code)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 1)
	assert.Equal(t, file, records[0]["file"])
	assert.Equal(t, false, records[0]["c2pa_present"])
	assert.Contains(t, records[0], "c2pa_error")
	assert.NotContains(t, records[0], "analysis")
}

func TestRun_NativeCollectorToFile(t *testing.T) {
	dir := isolate(t)
	media := filepath.Join(dir, "media")
	require.NoError(t, os.Mkdir(media, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(media, "b.txt"), []byte("b"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(media, "a.txt"), []byte("a"), 0600))
	out := filepath.Join(dir, "reports", "scan.json")

	code, stdout, _ := runCLI(t,
		"--path", media,
		"--collector", "native",
		"--c2patool", filepath.Join(dir, "no-such-c2patool"),
		"--format", "json",
		"--output", out,
	)
	require.Equal(t, 0, code)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 2)
	assert.Equal(t, filepath.Join(media, "a.txt"), records[0]["file"])
	assert.Equal(t, filepath.Join(media, "b.txt"), records[1]["file"])
	assert.Contains(t, records[0], "analysis")
	assert.Equal(t, map[string]any{}, records[0]["iptc"])
}

func TestRun_UnknownCollector(t *testing.T) {
	dir := isolate(t)
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0600))

	code, _, stderr := runCLI(t, "--collector", "magic", file)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown collector")
}

func TestWriteOutput(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeOutput("hello\n", "", &buf))
	assert.Equal(t, "hello\n", buf.String())

	err := writeOutput("x", "../escape.txt", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path traversal")

	target := filepath.Join(t.TempDir(), "out.txt")
	require.NoError(t, writeOutput("saved", target, io.Discard))
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "saved", string(data))

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestReportScanError(t *testing.T) {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name      string
		ctx       context.Context
		err       error
		wantFatal bool
		wantOut   string
	}{
		{name: "no error", ctx: context.Background()},
		{
			name:      "invalid path",
			ctx:       context.Background(),
			err:       fmt.Errorf("%w: x", scanner.ErrInvalidPath),
			wantFatal: true,
			wantOut:   "Error: invalid path: media\n",
		},
		{
			name:      "directory read failure",
			ctx:       context.Background(),
			err:       errors.New("reading directory media: permission denied"),
			wantFatal: true,
			wantOut:   "Error: reading directory media: permission denied\n",
		},
		{
			name:    "interrupted",
			ctx:     cancelled,
			err:     context.Canceled,
			wantOut: "Warning: scan stopped early: context canceled\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			fatal := reportScanError(tt.ctx, tt.err, "media", &stderr)
			assert.Equal(t, tt.wantFatal, fatal)
			assert.Equal(t, tt.wantOut, stderr.String())
		})
	}
}

func TestRun_InterruptedExitCode(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0600))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"--collector", "native", "--c2patool", filepath.Join(dir, "none"), dir}, &stdout, &stderr, false)

	assert.Equal(t, 130, code)
	assert.Contains(t, stderr.String(), "Warning: scan stopped early")
	assert.Equal(t, "No files scanned.\n", stdout.String())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}
