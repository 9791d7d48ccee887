// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
)

const (
	jumbfSuperBox       = "jumb"
	jumbfDescriptionBox = "jumd"
	maxJUMBFDepth       = 16
)

// jumbfSegment handles a JPEG APP11 segment: "JP", box instance, sequence
// number, then the box bytes. Only the first packet of a sequence carries
// the descriptor tree so continuation packets are skipped.
func (tb *tagBuilder) jumbfSegment(seg []byte) {
	if len(seg) < 8 {
		return
	}
	if seq := binary.BigEndian.Uint32(seg[4:8]); seq != 1 {
		return
	}
	tb.jumbfBox(seg[8:])
}

// jumbfBox walks ISO BMFF style boxes and records every description box.
func (tb *tagBuilder) jumbfBox(data []byte) {
	tb.walkJUMBF(data, 0)
}

func (tb *tagBuilder) walkJUMBF(data []byte, depth int) {
	if depth > maxJUMBFDepth {
		return
	}
	for len(data) >= 8 {
		size := int(binary.BigEndian.Uint32(data[0:4]))
		typ := string(data[4:8])
		header := 8
		switch {
		case size == 1:
			if len(data) < 16 {
				return
			}
			size = int(binary.BigEndian.Uint64(data[8:16]))
			header = 16
		case size == 0:
			size = len(data)
		}
		if size < header {
			return
		}
		// A box cut short by segmentation is parsed as far as it goes.
		end := size
		if end > len(data) {
			end = len(data)
		}
		payload := data[header:end]

		switch typ {
		case jumbfSuperBox:
			tb.walkJUMBF(payload, depth+1)
		case jumbfDescriptionBox:
			tb.jumbfDescription(payload)
		}
		if size > len(data) {
			return
		}
		data = data[size:]
	}
}

// jumbfDescription decodes the type UUID and optional label of a jumd box.
func (tb *tagBuilder) jumbfDescription(payload []byte) {
	if len(payload) < 17 {
		tb.warn("JUMBF: short description box")
		return
	}
	tb.appendValue("JUMBF:JUMDType", metavalue.String(formatJUMDType(payload[:16])))

	toggles := payload[16]
	if toggles&0x02 == 0 {
		return
	}
	rest := payload[17:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		end = len(rest)
	}
	tb.appendValue("JUMBF:JUMDLabel", metavalue.String(string(rest[:end])))
}

// formatJUMDType renders a content type UUID as exiftool does, with the
// leading four-character code shown in parentheses when printable.
func formatJUMDType(uuid []byte) string {
	tail := hex.EncodeToString(uuid[4:])
	grouped := fmt.Sprintf("%s-%s-%s", tail[0:4], tail[4:8], tail[8:])
	code := uuid[:4]
	for _, c := range code {
		if c < 0x20 || c > 0x7E {
			return hex.EncodeToString(code) + "-" + grouped
		}
	}
	return "(" + string(code) + ")-" + grouped
}
