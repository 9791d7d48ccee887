// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package sniff determines the MIME type of a file, by content first and by
// extension as a fallback.
package sniff

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Sniffer reports the MIME type of a file, or false when it cannot tell.
type Sniffer interface {
	Sniff(path string) (string, bool)
}

// genericType is what content detection reports when it recognizes nothing.
const genericType = "application/octet-stream"

// extensionTypes covers media formats that carry provenance metadata but are
// missing from many system MIME tables.
var extensionTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".jpe":  "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".heic": "image/heic",
	".heif": "image/heif",
	".avif": "image/avif",
	".dng":  "image/x-adobe-dng",
	".svg":  "image/svg+xml",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mov":  "video/quicktime",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".pdf":  "application/pdf",
}

// MIMESniffer detects types from file content and falls back to the file
// extension.
type MIMESniffer struct {
	// DisableContent skips content detection, leaving only the extension table.
	DisableContent bool
}

// NewMIMESniffer creates a sniffer with content detection enabled.
func NewMIMESniffer() *MIMESniffer {
	return &MIMESniffer{}
}

// Sniff implements Sniffer.
func (s *MIMESniffer) Sniff(path string) (string, bool) {
	if !s.DisableContent {
		if mt, err := mimetype.DetectFile(path); err == nil && !mt.Is(genericType) {
			return baseType(mt.String()), true
		}
	}
	return ByExtension(path)
}

// ByExtension looks the type up from the file extension alone.
func ByExtension(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return "", false
	}
	if t, ok := extensionTypes[ext]; ok {
		return t, true
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return baseType(t), true
	}
	return "", false
}

// baseType strips parameters such as "; charset=utf-8".
func baseType(t string) string {
	if i := strings.IndexByte(t, ';'); i >= 0 {
		t = t[:i]
	}
	return strings.TrimSpace(t)
}
