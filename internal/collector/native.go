// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
)

// DefaultMaxFileSize caps how much of a file the native collector reads.
const DefaultMaxFileSize = 100 * 1024 * 1024

var (
	jpegSOI      = []byte{0xFF, 0xD8}
	pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

	exifPrefix      = []byte("Exif\x00\x00")
	xmpPrefix       = []byte("http://ns.adobe.com/xap/1.0/\x00")
	photoshopPrefix = []byte("Photoshop 3.0\x00")
	xpacketStart    = []byte("<?xpacket begin")
	xpacketEnd      = []byte("<?xpacket end")
)

const xmpPNGKeyword = "XML:com.adobe.xmp"

// NativeCollector parses JPEG, PNG and PDF containers directly, for hosts
// without exiftool. It reports EXIF (via goexif), XMP, IPTC-IIM and JUMBF
// descriptor tags using exiftool's group naming. Other formats only get an XMP
// packet scan.
type NativeCollector struct {
	MaxFileSize int64
}

// NewNativeCollector creates a native collector with the default size cap.
func NewNativeCollector() *NativeCollector {
	return &NativeCollector{MaxFileSize: DefaultMaxFileSize}
}

func (c *NativeCollector) Name() string {
	return "native"
}

// Collect implements Collector.
func (c *NativeCollector) Collect(ctx context.Context, path string) (*Result, error) {
	data, err := c.readFile(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tb := newTagBuilder()
	switch {
	case bytes.HasPrefix(data, jpegSOI):
		c.collectJPEG(data, tb)
	case bytes.HasPrefix(data, pngSignature):
		c.collectPNG(data, tb)
	case bytes.HasPrefix(data, pdfHeader):
		c.collectPDF(data, tb)
	default:
		if packet := findXMPPacket(data); packet != nil {
			tb.xmp(packet)
		}
	}
	return tb.result(), nil
}

func (c *NativeCollector) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if c.MaxFileSize > 0 && stat.Size() > c.MaxFileSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d bytes)", stat.Size(), c.MaxFileSize)
	}
	return io.ReadAll(f)
}

// collectJPEG walks the APPn segments up to the start of scan.
func (c *NativeCollector) collectJPEG(data []byte, tb *tagBuilder) {
	pos := 2
	for pos+4 <= len(data) {
		if data[pos] != 0xFF {
			tb.warn(fmt.Sprintf("JPEG: expected marker at offset %d", pos))
			return
		}
		marker := data[pos+1]
		if marker == 0xFF {
			pos++
			continue
		}
		if marker == 0xD9 || marker == 0xDA {
			return
		}
		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		if segLen < 2 || pos+2+segLen > len(data) {
			tb.warn(fmt.Sprintf("JPEG: truncated segment 0x%02X at offset %d", marker, pos))
			return
		}
		seg := data[pos+4 : pos+2+segLen]

		switch {
		case marker == 0xE1 && bytes.HasPrefix(seg, exifPrefix):
			tb.exif(seg[len(exifPrefix):])
		case marker == 0xE1 && bytes.HasPrefix(seg, xmpPrefix):
			tb.xmp(seg[len(xmpPrefix):])
		case marker == 0xED && bytes.HasPrefix(seg, photoshopPrefix):
			tb.iptc(seg[len(photoshopPrefix):])
		case marker == 0xEB && bytes.HasPrefix(seg, []byte("JP")):
			tb.jumbfSegment(seg)
		}
		pos += 2 + segLen
	}
}

// collectPNG walks the chunk list up to IEND.
func (c *NativeCollector) collectPNG(data []byte, tb *tagBuilder) {
	pos := len(pngSignature)
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		typ := string(data[pos+4 : pos+8])
		if length < 0 || pos+12+length > len(data) {
			tb.warn(fmt.Sprintf("PNG: truncated %s chunk at offset %d", typ, pos))
			return
		}
		chunk := data[pos+8 : pos+8+length]

		switch typ {
		case "eXIf":
			tb.exif(chunk)
		case "iTXt":
			if key, text, ok := parseITXt(chunk); ok && key == xmpPNGKeyword {
				tb.xmp(text)
			}
		case "tEXt":
			if key, text, ok := bytes.Cut(chunk, []byte{0}); ok && string(key) == xmpPNGKeyword {
				tb.xmp(text)
			}
		case "caBX":
			tb.jumbfBox(chunk)
		case "IEND":
			return
		}
		pos += 12 + length
	}
}

// parseITXt splits an uncompressed iTXt chunk into keyword and text.
func parseITXt(chunk []byte) (string, []byte, bool) {
	null := bytes.IndexByte(chunk, 0)
	if null <= 0 || null+3 > len(chunk) {
		return "", nil, false
	}
	key := string(chunk[:null])
	if chunk[null+1] != 0 {
		// compressed text is not supported
		return key, nil, false
	}
	rest := chunk[null+3:]
	for i := 0; i < 2; i++ {
		n := bytes.IndexByte(rest, 0)
		if n < 0 {
			return key, nil, false
		}
		rest = rest[n+1:]
	}
	return key, rest, true
}

func findXMPPacket(data []byte) []byte {
	start := bytes.Index(data, xpacketStart)
	if start < 0 {
		return nil
	}
	end := bytes.Index(data[start:], xpacketEnd)
	if end < 0 {
		return nil
	}
	return data[start : start+end]
}

// tagBuilder accumulates tags in emission order. Repeated tags become arrays.
type tagBuilder struct {
	tags     *metavalue.Object
	warnings []string
}

func newTagBuilder() *tagBuilder {
	return &tagBuilder{tags: metavalue.NewObject()}
}

func (tb *tagBuilder) set(key string, v metavalue.Value) {
	if !tb.tags.Has(key) {
		tb.tags.Set(key, v)
	}
}

func (tb *tagBuilder) appendValue(key string, v metavalue.Value) {
	prev, ok := tb.tags.Get(key)
	if !ok {
		tb.tags.Set(key, v)
		return
	}
	if items, isArray := prev.AsArray(); isArray {
		next := append(append([]metavalue.Value{}, items...), v)
		tb.tags.Set(key, metavalue.Array(next...))
		return
	}
	tb.tags.Set(key, metavalue.Array(prev, v))
}

func (tb *tagBuilder) warn(msg string) {
	tb.warnings = append(tb.warnings, msg)
}

func (tb *tagBuilder) result() *Result {
	return &Result{Tags: metavalue.ObjectValue(tb.tags), Warnings: tb.warnings}
}
