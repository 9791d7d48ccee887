// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF lays out objects 1..n with a matching xref table. Object 1 must be
// the catalog and object 2 the Info dictionary.
func buildPDF(objects ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R /Info 2 0 R >>\n", len(objects)+1)
	fmt.Fprintf(&buf, "startxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func flateStream(dict string, data []byte) string {
	var z bytes.Buffer
	w := zlib.NewWriter(&z)
	_, _ = w.Write(data)
	_ = w.Close()
	return fmt.Sprintf("<< %s /Filter /FlateDecode /Length %d >>\nstream\n%s\nendstream", dict, z.Len(), z.String())
}

func TestNativeCollector_PDFCompressedMetadata(t *testing.T) {
	data := buildPDF(
		"<< /Type /Catalog /Pages 4 0 R /Metadata 3 0 R >>",
		"<< /Title (Generated Poster) /Producer (Render Suite) /CreationDate (D:20240101120000Z) >>",
		flateStream("/Type /Metadata /Subtype /XML", []byte(testXMP)),
		"<< /Type /Pages /Kids [] /Count 0 >>",
	)
	require.False(t, bytes.Contains(data, xpacketStart), "metadata must not be visible to a raw scan")
	path := writeFile(t, "poster.pdf", data)

	tags, warnings := collectTags(t, path)

	assert.Empty(t, warnings)
	assert.Equal(t, "Generated Poster", tagString(t, tags, "PDF:Title"))
	assert.Equal(t, "Render Suite", tagString(t, tags, "PDF:Producer"))
	assert.Equal(t, "D:20240101120000Z", tagString(t, tags, "PDF:CreateDate"))
	assert.Equal(t, "Jane Doe", tagString(t, tags, "XMP-dc:Creator"))
}

func TestNativeCollector_PDFWithoutMetadataStream(t *testing.T) {
	data := buildPDF(
		"<< /Type /Catalog /Pages 3 0 R >>",
		"<< /Author (A. Person) >>",
		"<< /Type /Pages /Kids [] /Count 0 >>",
	)
	path := writeFile(t, "plain.pdf", data)

	tags, warnings := collectTags(t, path)

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"PDF:Author"}, tags.Keys())
}

func TestNativeCollector_MalformedPDFFallsBackToPacketScan(t *testing.T) {
	data := append([]byte("%PDF-1.7\n"), testXMP...)
	path := writeFile(t, "broken.pdf", data)

	tags, warnings := collectTags(t, path)

	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "PDF: ")
	assert.Equal(t, "Jane Doe", tagString(t, tags, "XMP-dc:Creator"))
}
