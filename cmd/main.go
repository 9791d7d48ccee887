// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/collector"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/config"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/formatters"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/help"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/manifest"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/observability"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/scanner"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/sniff"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/toolexec"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/version"

	// Import formatters to register them
	_ "github.com/abrignoni/AI-Provenance-Scanner/internal/formatters/json"
	_ "github.com/abrignoni/AI-Provenance-Scanner/internal/formatters/text"
	_ "github.com/abrignoni/AI-Provenance-Scanner/internal/formatters/yaml"

	"golang.org/x/term"
)

// cliFlags holds the raw command line values.
type cliFlags struct {
	path         string
	configFile   string
	profileName  string
	listProfiles bool
	format       string
	jsonOutput   bool
	c2paOnly     bool
	flattened    bool
	noColor      bool
	outputFile   string
	collector    string
	exiftool     string
	c2patool     string
	timeout      time.Duration
	debug        bool
	showVersion  bool
	showHelp     bool
}

// settings is the resolved configuration for one run.
type settings struct {
	format          string
	c2paOnly        bool
	flattened       bool
	noColor         bool
	debug           bool
	collector       string
	exiftool        string
	c2patool        string
	timeout         time.Duration
	excludePatterns []string
}

func newFlagSet(f *cliFlags, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(version.Name, flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.path, "path", "", "Path to the file or directory to scan")
	fs.StringVar(&f.configFile, "config", "", "Path to configuration file (YAML)")
	fs.StringVar(&f.profileName, "profile", "", "Profile name to use from config file")
	fs.BoolVar(&f.listProfiles, "list-profiles", false, "List available profiles")
	fs.StringVar(&f.format, "format", "text", "Output format: text, json, yaml")
	fs.BoolVar(&f.jsonOutput, "json", false, "Same as --format json")
	fs.BoolVar(&f.c2paOnly, "c2pa-only", false, "Only read content credentials")
	fs.BoolVar(&f.flattened, "flattened", false, "Include the flattened C2PA manifest in text output")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")
	fs.StringVar(&f.outputFile, "output", "", "Path to output file (stdout when empty)")
	fs.StringVar(&f.collector, "collector", "auto", "Tag collector: auto, exiftool, native")
	fs.StringVar(&f.exiftool, "exiftool", collector.DefaultExiftoolPath, "exiftool executable")
	fs.StringVar(&f.c2patool, "c2patool", manifest.DefaultC2patoolPath, "c2patool executable")
	fs.DurationVar(&f.timeout, "timeout", 30*time.Second, "Per tool invocation timeout")
	fs.BoolVar(&f.debug, "debug", false, "Log scan steps and timings to stderr")
	fs.BoolVar(&f.showVersion, "version", false, "Show version information")
	fs.BoolVar(&f.showHelp, "help", false, "Show help information")
	return fs
}

// isFlagSet reports whether name was given explicitly on the command line.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// loadConfiguration loads the config file, falling back to defaults with a
// warning when it cannot be used.
func loadConfiguration(configFile string, stderr io.Writer) *config.Config {
	cfg, err := config.LoadConfigOrDefault(configFile)
	if err != nil {
		fmt.Fprintf(stderr, "Warning: Error loading config file: %v\n", err)
		fmt.Fprintf(stderr, "Using default configuration\n")
	}
	return cfg
}

// handleProfiles prints the profile list or resolves the selected profile.
// done is true when the run should stop after printing.
func handleProfiles(cfg *config.Config, f *cliFlags, stdout io.Writer) (profile *config.Profile, done bool, err error) {
	if f.listProfiles {
		profiles := cfg.ListProfiles()
		if len(profiles) == 0 {
			fmt.Fprintln(stdout, "No profiles defined in configuration file.")
			return nil, true, nil
		}
		fmt.Fprintln(stdout, "Available profiles:")
		for _, name := range profiles {
			p := cfg.GetProfile(name)
			if p != nil && p.Description != "" {
				fmt.Fprintf(stdout, "  - %s: %s\n", name, p.Description)
			} else {
				fmt.Fprintf(stdout, "  - %s\n", name)
			}
		}
		return nil, true, nil
	}

	if f.profileName == "" {
		return nil, false, nil
	}
	profile = cfg.GetProfile(f.profileName)
	if profile == nil {
		return nil, false, fmt.Errorf("profile '%s' not found (available: %s)",
			f.profileName, strings.Join(cfg.ListProfiles(), ", "))
	}
	return profile, false, nil
}

// resolveConfiguration layers built-in defaults, config defaults, the profile
// and explicitly set flags, in that order.
func resolveConfiguration(fs *flag.FlagSet, f *cliFlags, cfg *config.Config, profile *config.Profile) settings {
	s := settings{
		format:          "text",
		collector:       string(collector.ModeAuto),
		exiftool:        collector.DefaultExiftoolPath,
		c2patool:        manifest.DefaultC2patoolPath,
		timeout:         30 * time.Second,
		c2paOnly:        cfg.Defaults.C2PAOnly,
		flattened:       cfg.Defaults.Flattened,
		noColor:         cfg.Defaults.NoColor,
		debug:           cfg.Defaults.Debug,
		excludePatterns: cfg.Defaults.ExcludePatterns,
	}
	if cfg.Defaults.Format != "" {
		s.format = cfg.Defaults.Format
	}
	if cfg.Defaults.Collector != "" {
		s.collector = cfg.Defaults.Collector
	}
	if cfg.Tools.Exiftool != "" {
		s.exiftool = cfg.Tools.Exiftool
	}
	if cfg.Tools.C2patool != "" {
		s.c2patool = cfg.Tools.C2patool
	}
	if cfg.Tools.Timeout != 0 {
		s.timeout = cfg.Tools.Timeout
	}

	if profile != nil {
		if profile.Format != "" {
			s.format = profile.Format
		}
		if profile.Collector != "" {
			s.collector = profile.Collector
		}
		if profile.Timeout != 0 {
			s.timeout = profile.Timeout
		}
		if len(profile.ExcludePatterns) > 0 {
			s.excludePatterns = profile.ExcludePatterns
		}
		s.c2paOnly = s.c2paOnly || profile.C2PAOnly
		s.flattened = s.flattened || profile.Flattened
		s.noColor = s.noColor || profile.NoColor
		s.debug = s.debug || profile.Debug
	}

	if isFlagSet(fs, "format") && f.format != "" {
		s.format = f.format
	}
	if isFlagSet(fs, "json") && f.jsonOutput {
		s.format = "json"
	}
	if isFlagSet(fs, "collector") && f.collector != "" {
		s.collector = f.collector
	}
	if isFlagSet(fs, "exiftool") && f.exiftool != "" {
		s.exiftool = f.exiftool
	}
	if isFlagSet(fs, "c2patool") && f.c2patool != "" {
		s.c2patool = f.c2patool
	}
	if isFlagSet(fs, "timeout") {
		s.timeout = f.timeout
	}
	if isFlagSet(fs, "c2pa-only") {
		s.c2paOnly = f.c2paOnly
	}
	if isFlagSet(fs, "flattened") {
		s.flattened = f.flattened
	}
	if isFlagSet(fs, "no-color") {
		s.noColor = f.noColor
	}
	if isFlagSet(fs, "debug") {
		s.debug = f.debug
	}
	return s
}

// parseInterspersed parses args allowing flags after positional arguments,
// and returns the positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if rest[0] == "--" {
			return append(positional, rest[1:]...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// scanTarget returns --path or the single positional argument.
func scanTarget(f *cliFlags, args []string) (string, error) {
	switch {
	case f.path != "" && len(args) > 0:
		return "", errors.New("use either --path or a positional path, not both")
	case len(args) > 1:
		return "", fmt.Errorf("expected one path, got %d", len(args))
	case len(args) == 1:
		return args[0], nil
	default:
		return f.path, nil
	}
}

// buildScanner wires the collaborators for the resolved settings.
func buildScanner(s settings, observer *observability.StandardObserver) (*scanner.Scanner, error) {
	if s.timeout < 0 {
		return nil, fmt.Errorf("timeout must not be negative, got %s", s.timeout)
	}
	runner := toolexec.NewRunner(s.timeout)

	var tags scanner.TagCollector
	if !s.c2paOnly {
		c, err := collector.New(collector.Mode(s.collector), s.exiftool, runner)
		if err != nil {
			return nil, err
		}
		tags = c
		observer.DebugObserver.LogDetail("main", "tag collector: "+c.Name())
	}

	return scanner.New(
		sniff.NewMIMESniffer(),
		tags,
		manifest.NewC2patoolReader(s.c2patool, runner),
		scanner.WithObserver(observer),
		scanner.WithC2PAOnly(s.c2paOnly),
		scanner.WithExcludePatterns(s.excludePatterns),
	)
}

// writeOutput writes result to outputFile, or to stdout when it is empty.
func writeOutput(result, outputFile string, stdout io.Writer) error {
	if outputFile == "" {
		_, err := io.WriteString(stdout, result)
		return err
	}

	cleanOutputPath := filepath.Clean(outputFile)
	if strings.Contains(outputFile, "..") || strings.Contains(cleanOutputPath, "..") {
		return fmt.Errorf("path traversal not allowed in output path: %s", outputFile)
	}
	abs, err := filepath.Abs(cleanOutputPath)
	if err != nil {
		return fmt.Errorf("invalid output file path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0700); err != nil {
		return fmt.Errorf("error creating output directory: %w", err)
	}
	if err := os.WriteFile(abs, []byte(result), 0600); err != nil {
		return fmt.Errorf("error writing to output file: %w", err)
	}
	return nil
}

// reportScanError prints a ScanPath error. It returns true when the run must
// stop; an interrupted scan still reports the files scanned so far.
func reportScanError(ctx context.Context, err error, target string, stderr io.Writer) (fatal bool) {
	switch {
	case err == nil:
		return false
	case errors.Is(err, scanner.ErrInvalidPath):
		fmt.Fprintf(stderr, "Error: invalid path: %s\n", target)
		return true
	case ctx.Err() != nil:
		fmt.Fprintf(stderr, "Warning: scan stopped early: %v\n", err)
		return false
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return true
	}
}

// run executes the command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, colorCapable bool) int {
	f := &cliFlags{}
	fs := newFlagSet(f, stderr)
	fs.Usage = func() {
		help.NewSystem(stderr, !colorCapable).ShowGeneralHelp()
	}
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if f.showVersion {
		fmt.Fprintln(stdout, version.Info())
		return 0
	}
	if f.showHelp {
		help.NewSystem(stdout, f.noColor || !colorCapable).ShowGeneralHelp()
		return 0
	}

	cfg := loadConfiguration(f.configFile, stderr)
	profile, done, err := handleProfiles(cfg, f, stdout)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if done {
		return 0
	}

	s := resolveConfiguration(fs, f, cfg, profile)
	if f.outputFile != "" || !colorCapable {
		s.noColor = true
	}

	observer := observability.New(s.debug, stderr)
	debug := observer.DebugObserver
	debug.LogDetail("main", fmt.Sprintf("Command line arguments: %v", args))
	debug.LogDetail("main", fmt.Sprintf("run id: %s", observer.RunID()))
	if profile != nil {
		debug.LogDetail("main", "profile: "+f.profileName)
	}

	target, err := scanTarget(f, positional)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if target == "" {
		fmt.Fprintln(stderr, "Error: a path to scan is required (use --path or a positional argument)")
		fs.Usage()
		return 1
	}

	sc, err := buildScanner(s, observer)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	reports, err := sc.ScanPath(ctx, target)
	if fatal := reportScanError(ctx, err, target, stderr); fatal {
		return 1
	}

	result, err := formatters.Export(s.format, reports, formatters.FormatterOptions{
		ShowFlattened: s.flattened,
		NoColor:       s.noColor,
	})
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := writeOutput(result, f.outputFile, stdout); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if ctx.Err() != nil {
		return 130
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, isTerminal(os.Stdout))
	stop()
	os.Exit(code)
}
