// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package scanner assembles a provenance report for each file of a path.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/collector"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/observability"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/provenance"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/report"
)

// ErrInvalidPath is returned when the scan target is neither a regular file
// nor a directory.
var ErrInvalidPath = errors.New("invalid path")

const componentName = "scanner"

// Scanner runs the collaborators over files and derives the canonical facts.
// Files are processed one at a time and share no state.
type Scanner struct {
	sniffer   Sniffer
	collector TagCollector
	reader    ManifestReader
	observer  *observability.StandardObserver
	c2paOnly  bool
	excludes  []string
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithObserver sets the observer used for step and timing records.
func WithObserver(o *observability.StandardObserver) Option {
	return func(s *Scanner) { s.observer = o }
}

// WithC2PAOnly skips tag collection and analysis.
func WithC2PAOnly(enabled bool) Option {
	return func(s *Scanner) { s.c2paOnly = enabled }
}

// WithExcludePatterns skips directory entries whose name matches any of the
// doublestar patterns.
func WithExcludePatterns(patterns []string) Option {
	return func(s *Scanner) { s.excludes = append([]string(nil), patterns...) }
}

// New creates a Scanner. The tag collector may be nil in c2pa-only mode.
func New(sniffer Sniffer, tags TagCollector, reader ManifestReader, opts ...Option) (*Scanner, error) {
	s := &Scanner{sniffer: sniffer, collector: tags, reader: reader}
	for _, opt := range opts {
		opt(s)
	}

	if sniffer == nil {
		return nil, errors.New("sniffer is required")
	}
	if reader == nil {
		return nil, errors.New("manifest reader is required")
	}
	if tags == nil && !s.c2paOnly {
		return nil, errors.New("tag collector is required unless c2pa-only")
	}
	for _, p := range s.excludes {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	if s.observer == nil {
		s.observer = observability.New(false, io.Discard)
	}
	return s, nil
}

func (s *Scanner) GetComponentName() string {
	return componentName
}

// ScanFile builds the report for one file. Collaborator failures are recorded
// in the report and never abort the scan.
func (s *Scanner) ScanFile(ctx context.Context, path string) *report.Report {
	debug := s.observer.DebugObserver
	done := debug.StartStep(componentName, "scan_file", path)
	finishTiming := s.observer.StartTiming(componentName, "scan_file", path)

	r := &report.Report{File: path, C2PAOnly: s.c2paOnly}

	if mime, ok := s.sniffer.Sniff(path); ok {
		r.MIMEType = mime
	}
	debug.LogDetail("sniff", fmt.Sprintf("mime type: %q", r.MIMEType))

	// Without a media type the manifest reader cannot select a parser.
	if r.MIMEType != "" {
		tree, err := s.reader.Read(ctx, path, r.MIMEType)
		switch {
		case err != nil:
			r.C2PAError = err.Error()
			debug.LogDetail("manifest", "read failed: "+r.C2PAError)
		case tree != nil:
			r.C2PAPresent = true
			r.C2PARaw = tree
		}
	}

	if s.c2paOnly {
		done(true, fmt.Sprintf("c2pa_present=%v", r.C2PAPresent))
		finishTiming(true, map[string]interface{}{"c2pa_present": r.C2PAPresent})
		return r
	}

	tags := metavalue.ObjectValue(metavalue.NewObject())
	warnings := []string{}
	result, err := s.collector.Collect(ctx, path)
	if err != nil {
		warnings = append(warnings, err.Error())
		debug.LogDetail(s.collector.Name(), "collect failed: "+err.Error())
	} else {
		tags = result.Tags
		warnings = append(warnings, result.Warnings...)
	}

	iptc, jumbf := collector.Partition(tags)
	r.IPTC = iptc
	r.JUMBFRaw = jumbf
	r.ExiftoolWarnings = warnings

	iptcFacts, sources := provenance.NormalizeIPTC(metavalue.ObjectValue(iptc))
	r.Analysis = &report.Analysis{
		IPTCNormalized:     iptcFacts,
		IPTCSourcesMapping: sources,
		C2PANormalized:     provenance.ExtractC2PA(r.C2PARaw),
	}

	debug.LogMetric(componentName, "iptc_tags", iptc.Len())
	debug.LogMetric(componentName, "jumbf_tags", jumbf.Len())
	done(true, fmt.Sprintf("c2pa_present=%v ai_generated=%s", r.C2PAPresent, iptcFacts.AIGenerated))
	finishTiming(true, map[string]interface{}{
		"c2pa_present": r.C2PAPresent,
		"iptc_fields":  iptcFacts.Len(),
		"warnings":     len(warnings),
	})
	return r
}

// Files resolves the scan target: a regular file is scanned alone, a
// directory contributes its immediate regular files sorted by name.
func (s *Scanner) Files(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	if info.Mode().IsRegular() {
		return []string{path}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", path, err)
	}
	var files []string
	for _, entry := range entries {
		if s.excluded(entry.Name()) {
			continue
		}
		full := filepath.Join(path, entry.Name())
		// Stat follows symlinks so linked files are scanned too.
		fi, err := os.Stat(full)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		files = append(files, full)
	}
	sort.Strings(files)
	return files, nil
}

func (s *Scanner) excluded(name string) bool {
	for _, p := range s.excludes {
		if ok, _ := doublestar.Match(p, name); ok {
			return true
		}
	}
	return false
}

// ScanPath scans a file or the immediate files of a directory, in order.
// Cancellation stops the batch and returns the reports produced so far.
func (s *Scanner) ScanPath(ctx context.Context, path string) ([]*report.Report, error) {
	files, err := s.Files(path)
	if err != nil {
		return nil, err
	}
	s.observer.DebugObserver.LogDetail(componentName, fmt.Sprintf("%d file(s) to scan", len(files)))

	reports := make([]*report.Report, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		reports = append(reports, s.ScanFile(ctx, f))
	}
	return reports, nil
}
