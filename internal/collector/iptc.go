// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"bytes"
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
)

// iptcApplicationRecord names IIM record 2 datasets the way exiftool does.
var iptcApplicationRecord = map[byte]string{
	0x05: "ObjectName",
	0x0F: "Category",
	0x14: "SupplementalCategories",
	0x19: "Keywords",
	0x28: "SpecialInstructions",
	0x37: "DateCreated",
	0x3C: "TimeCreated",
	0x3E: "DigitalCreationDate",
	0x50: "By-line",
	0x55: "By-lineTitle",
	0x5A: "City",
	0x5F: "Province-State",
	0x65: "Country-PrimaryLocationName",
	0x67: "OriginalTransmissionReference",
	0x69: "Headline",
	0x6E: "Credit",
	0x73: "Source",
	0x74: "CopyrightNotice",
	0x76: "Contact",
	0x78: "Caption-Abstract",
	0x7A: "Writer-Editor",
}

const photoshopIPTCResource = 0x0404

var eightBIM = []byte("8BIM")

// iptc reads Photoshop image resource blocks and decodes the IPTC-NAA one.
func (tb *tagBuilder) iptc(data []byte) {
	i := 0
	for i+12 <= len(data) {
		if !bytes.Equal(data[i:i+4], eightBIM) {
			i++
			continue
		}
		resType := binary.BigEndian.Uint16(data[i+4 : i+6])
		// Pascal name padded to an even length, including its length byte.
		nameLen := int(data[i+6]) + 1
		if nameLen%2 != 0 {
			nameLen++
		}
		i += 6 + nameLen
		if i+4 > len(data) {
			return
		}
		blockLen := int(binary.BigEndian.Uint32(data[i : i+4]))
		i += 4
		if blockLen < 0 || i+blockLen > len(data) {
			tb.warn("IPTC: truncated Photoshop resource block")
			return
		}
		if resType == photoshopIPTCResource {
			tb.iptcDatasets(data[i : i+blockLen])
		}
		i += blockLen
		if blockLen%2 != 0 {
			i++
		}
	}
}

func (tb *tagBuilder) iptcDatasets(data []byte) {
	i := 0
	for i+5 <= len(data) {
		if data[i] != 0x1C {
			i++
			continue
		}
		record, dataset := data[i+1], data[i+2]
		length := int(binary.BigEndian.Uint16(data[i+3 : i+5]))
		i += 5
		if i+length > len(data) {
			tb.warn("IPTC: truncated dataset")
			return
		}
		if name, ok := iptcApplicationRecord[dataset]; ok && record == 2 {
			tb.appendValue("IPTC:"+name, metavalue.String(decodeIPTCString(data[i:i+length])))
		}
		i += length
	}
}

// decodeIPTCString trims padding and replaces invalid UTF-8 sequences.
func decodeIPTCString(b []byte) string {
	s := strings.TrimRight(string(b), "\x00 ")
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "�")
	}
	return s
}
