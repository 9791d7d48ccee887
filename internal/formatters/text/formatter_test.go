// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package text

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/formatters"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/provenance"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/report"
)

func mustParse(t *testing.T, doc string) metavalue.Value {
	t.Helper()
	v, err := metavalue.Parse([]byte(doc))
	require.NoError(t, err)
	return v
}

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	iptcRaw := mustParse(t, `{
		"IPTC:By-line": "Jane Doe",
		"XMP-iptcExt:DigitalSourceType": "trainedAlgorithmicMedia"
	}`)
	tree := mustParse(t, `{"manifests": {"m1": {
		"claim_generator": "Gen/1.0",
		"assertions": [{"data": {"actions": ["c2pa.generated"], "digitalArt": true}}]
	}}}`)
	iptc, sources := provenance.NormalizeIPTC(iptcRaw)
	obj, _ := iptcRaw.AsObject()

	return &report.Report{
		File:             "art.png",
		MIMEType:         "image/png",
		C2PAPresent:      true,
		C2PARaw:          &tree,
		IPTC:             obj,
		JUMBFRaw:         metavalue.NewObject(),
		ExiftoolWarnings: []string{"Minor error"},
		Analysis: &report.Analysis{
			IPTCNormalized:     iptc,
			IPTCSourcesMapping: sources,
			C2PANormalized:     provenance.ExtractC2PA(&tree),
		},
	}
}

func format(t *testing.T, reports []*report.Report, opts formatters.FormatterOptions) string {
	t.Helper()
	opts.NoColor = true
	out, err := NewFormatter().Format(reports, opts)
	require.NoError(t, err)
	return out
}

func TestFormat_Empty(t *testing.T) {
	assert.Equal(t, "No files scanned.\n", format(t, nil, formatters.FormatterOptions{}))
}

func TestFormat_PaperReport(t *testing.T) {
	out := format(t, []*report.Report{sampleReport(t)}, formatters.FormatterOptions{})
	lines := strings.Split(out, "\n")

	assert.Equal(t, strings.Repeat("=", 80), lines[0])
	assert.Equal(t, "FILE: art.png", lines[1])
	assert.Equal(t, "MIME type: image/png", lines[2])
	assert.Equal(t, "C2PA present: true", lines[3])

	assert.Contains(t, out, "\n--- IPTC Normalized ---\n")
	assert.Contains(t, out, "Creator                       : Jane Doe (raw tag: IPTC:By-line)\n")
	assert.Contains(t, out, "Digital Source Type           : trainedAlgorithmicMedia (raw tag: XMP-iptcExt:DigitalSourceType) [AI GENERATED]\n")
	assert.Contains(t, out, "Ai Generated                  : true (raw tag: unknown)\n")

	assert.Contains(t, out, "\n--- C2PA Normalized ---\n")
	assert.Contains(t, out, "Signed                        : true\n")
	assert.Contains(t, out, "Claim Generator               : Gen/1.0\n")
	assert.Contains(t, out, "Digitalart                    : true [AI GENERATED]\n")
	assert.Contains(t, out, "Virtualrecording              : null\n")
	assert.Contains(t, out, "Actions                       : c2pa.generated [AI GENERATED]\n")

	assert.NotContains(t, out, "Flattened C2PA Manifest")
	assert.Contains(t, out, "\n--- ExifTool Warnings ---\n- Minor error\n")
	assert.True(t, strings.HasSuffix(out, "\n\n\n"))
}

func TestFormat_Flattened(t *testing.T) {
	out := format(t, []*report.Report{sampleReport(t)}, formatters.FormatterOptions{ShowFlattened: true})

	assert.Contains(t, out, "\n--- Flattened C2PA Manifest ---\n")
	assert.Contains(t, out, "claim_generator"+strings.Repeat(" ", 45)+": Gen/1.0\n")
	assert.Contains(t, out, "assertions[0].data.actions[0]"+strings.Repeat(" ", 31)+": c2pa.generated [AI GENERATED]\n")
	assert.Contains(t, out, "assertions[0].data.digitalArt"+strings.Repeat(" ", 31)+": true [AI GENERATED]\n")
}

func TestFormat_C2PAOnlyHasNoAnalysis(t *testing.T) {
	r := &report.Report{File: "a.jpg", C2PAOnly: true, C2PAError: "unsupported"}

	out := format(t, []*report.Report{r}, formatters.FormatterOptions{})

	assert.Contains(t, out, "MIME type: unknown\n")
	assert.Contains(t, out, "C2PA present: false\n")
	assert.Contains(t, out, "C2PA error: unsupported\n")
	assert.NotContains(t, out, "IPTC Normalized")
}

func TestDisplayValue_Truncates(t *testing.T) {
	long := strings.Repeat("é", 151)

	got := displayValue(metavalue.String(long))

	assert.Equal(t, strings.Repeat("é", 150)+" ... [truncated]", got)
	assert.Equal(t, "short", displayValue(metavalue.String("short")))
	assert.Equal(t, `["a","b"]`, displayValue(metavalue.Array(metavalue.String("a"), metavalue.String("b"))))
}

func TestFlattenedIsAI(t *testing.T) {
	assert.True(t, flattenedIsAI("assertions[0].data.trainedAlgorithmicMedia", metavalue.Null()))
	assert.True(t, flattenedIsAI("x.action", metavalue.String("c2pa.Generated")))
	assert.False(t, flattenedIsAI("x.action", metavalue.String("c2pa.opened")))
	assert.False(t, flattenedIsAI("x.count", metavalue.Int(3)))
}

func TestFormat_NoColorDoesNotLeakIntoLaterCalls(t *testing.T) {
	prev := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = prev })

	f := NewFormatter()
	reports := []*report.Report{sampleReport(t)}

	plain, err := f.Format(reports, formatters.FormatterOptions{NoColor: true})
	require.NoError(t, err)
	assert.NotContains(t, plain, "\x1b[")
	assert.False(t, color.NoColor)

	colored, err := f.Format(reports, formatters.FormatterOptions{})
	require.NoError(t, err)
	assert.Contains(t, colored, "\x1b[")
}
