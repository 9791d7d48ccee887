// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/formatters"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/provenance"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/report"

	"github.com/fatih/color"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	ruleWidth     = 80
	labelWidth    = 30
	pathWidth     = 60
	maxValueRunes = 150
	truncatedMark = " ... [truncated]"
	aiMarker      = " [AI GENERATED]"
)

// Formatter renders the paper-style report, one block per file
type Formatter struct {
	colors map[string]*color.Color
	title  cases.Caser
}

// NewFormatter creates a new text formatter
func NewFormatter() *Formatter {
	return &Formatter{
		colors: newPalette(false),
		title:  cases.Title(language.English),
	}
}

// newPalette builds the report colors. Disabled colors are per instance so
// the package-wide color.NoColor setting is left alone.
func newPalette(noColor bool) map[string]*color.Color {
	palette := map[string]*color.Color{
		"header":  color.New(color.FgWhite, color.Bold),
		"section": color.New(color.FgCyan, color.Bold),
		"ai":      color.New(color.FgRed, color.Bold),
		"warning": color.New(color.FgYellow),
		"dim":     color.New(color.FgBlue),
	}
	if noColor {
		for _, c := range palette {
			c.DisableColor()
		}
	}
	return palette
}

func (f *Formatter) Name() string {
	return "text"
}

func (f *Formatter) Description() string {
	return "Human-readable paper report with AI markers"
}

func (f *Formatter) FileExtension() string {
	return ".txt"
}

func (f *Formatter) Format(reports []*report.Report, options formatters.FormatterOptions) (string, error) {
	if len(reports) == 0 {
		return "No files scanned.\n", nil
	}

	rf := f
	if options.NoColor {
		rf = &Formatter{colors: newPalette(true), title: f.title}
	}
	var b strings.Builder
	for _, r := range reports {
		rf.appendReport(&b, r, options)
	}
	return b.String(), nil
}

func (f *Formatter) appendReport(b *strings.Builder, r *report.Report, options formatters.FormatterOptions) {
	rule := strings.Repeat("=", ruleWidth)
	mime := r.MIMEType
	if mime == "" {
		mime = "unknown"
	}

	b.WriteString(rule + "\n")
	b.WriteString(f.colors["header"].Sprintf("FILE: %s", r.File) + "\n")
	fmt.Fprintf(b, "MIME type: %s\n", mime)
	fmt.Fprintf(b, "C2PA present: %v\n", r.C2PAPresent)
	if r.C2PAError != "" {
		b.WriteString(f.colors["warning"].Sprintf("C2PA error: %s", r.C2PAError) + "\n")
	}
	b.WriteString(rule + "\n")

	if r.Analysis != nil {
		f.appendIPTC(b, r.Analysis)
		f.appendC2PA(b, r.Analysis.C2PANormalized)
		if options.ShowFlattened {
			f.appendFlattened(b, r.Analysis.C2PANormalized.FlattenedManifest)
		}
	}

	if len(r.ExiftoolWarnings) > 0 {
		f.appendSection(b, "ExifTool Warnings")
		for _, w := range r.ExiftoolWarnings {
			b.WriteString(f.colors["warning"].Sprintf("- %s", w) + "\n")
		}
	}
	b.WriteString("\n\n\n")
}

func (f *Formatter) appendIPTC(b *strings.Builder, a *report.Analysis) {
	f.appendSection(b, "IPTC Normalized")

	flagged := a.IPTCNormalized.AIGenerated == provenance.True
	sources := a.IPTCSourcesMapping
	for _, m := range a.IPTCNormalized.Object().Members() {
		src, ok := sources.Get(provenance.Field(m.Key))
		if !ok {
			src = "unknown"
		}
		line := fmt.Sprintf("%-*s: %s (raw tag: %s)", labelWidth, f.label(m.Key), displayValue(m.Value), src)
		f.appendLine(b, line, flagged && provenance.IsAIKey(m.Key))
	}
}

func (f *Formatter) appendC2PA(b *strings.Builder, facts provenance.C2PAFacts) {
	f.appendSection(b, "C2PA Normalized")

	for _, field := range facts.NamedFields() {
		line := fmt.Sprintf("%-*s: %s", labelWidth, f.label(field.Name), displayValue(field.Value))
		f.appendLine(b, line, provenance.IsAIKey(field.Name) && field.Value.Truthy())
	}

	actions := facts.Actions.Sorted()
	joined := "None"
	if len(actions) > 0 {
		joined = strings.Join(actions, ", ")
	}
	f.appendLine(b, fmt.Sprintf("%-*s: %s", labelWidth, "Actions", joined), hasGenerateAction(actions))
}

func (f *Formatter) appendFlattened(b *strings.Builder, flat *metavalue.Object) {
	f.appendSection(b, "Flattened C2PA Manifest")
	if flat == nil {
		return
	}
	for _, m := range flat.Members() {
		line := fmt.Sprintf("%-*s: %s", pathWidth, m.Key, displayValue(m.Value))
		f.appendLine(b, line, flattenedIsAI(m.Key, m.Value))
	}
}

func (f *Formatter) appendSection(b *strings.Builder, name string) {
	b.WriteString("\n" + f.colors["section"].Sprintf("--- %s ---", name) + "\n")
}

func (f *Formatter) appendLine(b *strings.Builder, line string, ai bool) {
	b.WriteString(line)
	if ai {
		b.WriteString(f.colors["ai"].Sprint(aiMarker))
	}
	b.WriteString("\n")
}

// label turns a snake_case or camelCase key into a title-cased label.
func (f *Formatter) label(key string) string {
	return f.title.String(strings.ReplaceAll(key, "_", " "))
}

// displayValue renders a value on one line, truncated to maxValueRunes.
func displayValue(v metavalue.Value) string {
	s := v.String()
	if utf8.RuneCountInString(s) <= maxValueRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxValueRunes]) + truncatedMark
}

func hasGenerateAction(actions []string) bool {
	for _, a := range actions {
		if strings.Contains(strings.ToLower(a), "generate") {
			return true
		}
	}
	return false
}

// flattenedIsAI flags manifest paths naming an AI key and string values
// mentioning generation.
func flattenedIsAI(path string, v metavalue.Value) bool {
	lower := strings.ToLower(path)
	for _, k := range provenance.AIKeys {
		if strings.Contains(lower, strings.ToLower(k)) {
			return true
		}
	}
	if s, ok := v.AsString(); ok && strings.Contains(strings.ToLower(s), "generate") {
		return true
	}
	return false
}

// Register the formatter during package initialization
func init() {
	formatters.Register(NewFormatter())
}
