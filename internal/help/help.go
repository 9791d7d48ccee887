// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package help

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/paths"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/version"

	"github.com/fatih/color"
)

// Option describes one command line flag in the usage screen.
type Option struct {
	Flag        string
	Arg         string
	Description string
}

// Options lists the flags in the order they are shown.
var Options = []Option{
	{"--path", "<path>", "File or directory to scan (a positional argument is accepted too)"},
	{"--c2pa-only", "", "Only read content credentials, skip tag collection and analysis"},
	{"--format", "<format>", "Output format: text, json, yaml (default: text)"},
	{"--json", "", "Same as --format json"},
	{"--flattened", "", "Include the flattened C2PA manifest in text output"},
	{"--no-color", "", "Disable colored output"},
	{"--output", "<path>", "Write the report to a file instead of stdout"},
	{"--config", "<path>", "Path to configuration file (YAML)"},
	{"--profile", "<name>", "Profile name to use from config file"},
	{"--list-profiles", "", "List available profiles and exit"},
	{"--collector", "<mode>", "Tag collector: auto, exiftool, native (default: auto)"},
	{"--exiftool", "<path>", "exiftool executable (default: exiftool)"},
	{"--c2patool", "<path>", "c2patool executable (default: c2patool)"},
	{"--timeout", "<duration>", "Per tool invocation timeout, e.g. 30s (default: 30s)"},
	{"--debug", "", "Log scan steps and timings to stderr"},
	{"--version", "", "Show version information"},
	{"--help", "", "Show this help message"},
}

// System renders help screens.
type System struct {
	out    io.Writer
	colors map[string]*color.Color
}

// NewSystem creates a help system writing to out.
func NewSystem(out io.Writer, noColor bool) *System {
	colors := map[string]*color.Color{
		"title":   color.New(color.FgWhite, color.Bold),
		"header":  color.New(color.FgBlue, color.Bold),
		"example": color.New(color.FgMagenta),
	}
	if noColor {
		for _, c := range colors {
			c.DisableColor()
		}
	}
	return &System{out: out, colors: colors}
}

// ShowGeneralHelp writes the usage screen.
func (h *System) ShowGeneralHelp() {
	name := version.Name
	h.colors["title"].Fprintf(h.out, "%s %s - AI provenance scanner\n", name, version.Version)
	fmt.Fprintln(h.out, "======================================")
	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "USAGE:")
	fmt.Fprintf(h.out, "  %s --path <file-or-directory> [options]\n", name)
	fmt.Fprintf(h.out, "  %s [options] <file-or-directory>\n", name)
	fmt.Fprintln(h.out)

	h.colors["header"].Fprintln(h.out, "OPTIONS:")
	w := tabwriter.NewWriter(h.out, 0, 0, 2, ' ', 0)
	for _, o := range Options {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", o.Flag, o.Arg, o.Description)
	}
	w.Flush()

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "EXAMPLES:")
	h.colors["example"].Fprintf(h.out, "    %s --path photo.jpg\n", name)
	h.colors["example"].Fprintf(h.out, "    %s --path ./images --format json --output report.json\n", name)
	h.colors["example"].Fprintf(h.out, "    %s --path photo.jpg --c2pa-only --json\n", name)
	h.colors["example"].Fprintf(h.out, "    %s --path photo.jpg --collector native --flattened\n", name)
	h.colors["example"].Fprintf(h.out, "    %s --list-profiles\n", name)

	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "CONFIGURATION:")
	fmt.Fprintf(h.out, "  Default config: %s\n", paths.GetConfigFile())
	fmt.Fprintln(h.out, "  Project config: .provenance-scan.yaml (in current directory)")
	fmt.Fprintf(h.out, "  Environment: %s - Override config directory\n", paths.ConfigDirEnv)
	fmt.Fprintln(h.out)
	h.colors["header"].Fprintln(h.out, "EXTERNAL TOOLS:")
	fmt.Fprintln(h.out, "  exiftool  reads IPTC, XMP and JUMBF tags (the native collector is used when missing)")
	fmt.Fprintln(h.out, "  c2patool  reads C2PA manifests (files report c2pa_present: false when missing)")
}
