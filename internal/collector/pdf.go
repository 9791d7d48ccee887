// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"bytes"
	"fmt"
	"io"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"

	"github.com/ledongthuc/pdf"
)

var pdfHeader = []byte("%PDF-")

// pdfInfoNames maps Info dictionary keys that exiftool renames.
var pdfInfoNames = map[string]string{
	"CreationDate": "CreateDate",
	"ModDate":      "ModifyDate",
}

// collectPDF reads the document Info dictionary and the catalog XMP stream.
// Metadata streams are usually Flate-compressed, so the raw packet scan is
// only a fallback for files the parser rejects.
func (c *NativeCollector) collectPDF(data []byte, tb *tagBuilder) {
	packet, err := readPDFMetadata(data, tb)
	if err != nil {
		tb.warn(fmt.Sprintf("PDF: %v", err))
	}
	if packet == nil {
		packet = findXMPPacket(data)
	}
	if packet != nil {
		tb.xmp(packet)
	}
}

func readPDFMetadata(data []byte, tb *tagBuilder) (packet []byte, err error) {
	// The parser panics on some malformed cross-reference data.
	defer func() {
		if r := recover(); r != nil {
			packet, err = nil, fmt.Errorf("malformed document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	trailer := r.Trailer()

	info := trailer.Key("Info")
	if info.Kind() == pdf.Dict {
		for _, key := range info.Keys() {
			if v, ok := pdfInfoValue(info.Key(key)); ok {
				name := key
				if renamed, found := pdfInfoNames[key]; found {
					name = renamed
				}
				tb.set("PDF:"+name, metavalue.String(v))
			}
		}
	}

	meta := trailer.Key("Root").Key("Metadata")
	if meta.Kind() != pdf.Stream {
		return nil, nil
	}
	rc := meta.Reader()
	defer rc.Close()
	packet, err = io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("error reading metadata stream: %w", err)
	}
	return packet, nil
}

func pdfInfoValue(v pdf.Value) (string, bool) {
	switch v.Kind() {
	case pdf.String:
		return v.Text(), true
	case pdf.Name:
		return v.Name(), true
	case pdf.Integer, pdf.Real, pdf.Bool:
		return v.String(), true
	default:
		return "", false
	}
}
