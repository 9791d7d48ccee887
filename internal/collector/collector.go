// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package collector gathers the namespaced descriptive tags (IPTC, XMP, EXIF,
// JUMBF) embedded in a media file.
package collector

import (
	"context"
	"fmt"
	"strings"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/toolexec"
)

// Result is the raw tag map for one file plus non-fatal diagnostics.
type Result struct {
	// Tags maps "Group:TagName" to its value in the order the source emitted
	// them. Always an object.
	Tags     metavalue.Value
	Warnings []string
}

// Collector extracts the raw tag map from a file.
type Collector interface {
	Collect(ctx context.Context, path string) (*Result, error)
	Name() string
}

// Mode selects a collector implementation.
type Mode string

const (
	ModeAuto     Mode = "auto"
	ModeExiftool Mode = "exiftool"
	ModeNative   Mode = "native"
)

// New builds the collector for mode. Auto prefers exiftool when the
// executable is available and otherwise uses the built-in parser.
func New(mode Mode, exiftoolPath string, runner *toolexec.Runner) (Collector, error) {
	if exiftoolPath == "" {
		exiftoolPath = DefaultExiftoolPath
	}
	switch mode {
	case ModeExiftool:
		return NewExiftoolCollector(exiftoolPath, runner), nil
	case ModeNative:
		return NewNativeCollector(), nil
	case ModeAuto, "":
		if toolexec.Available(exiftoolPath) {
			return NewExiftoolCollector(exiftoolPath, runner), nil
		}
		return NewNativeCollector(), nil
	default:
		return nil, fmt.Errorf("unknown collector %q (expected auto, exiftool or native)", mode)
	}
}

// IPTCTagPrefixes select the descriptive tags reported under "iptc". Besides
// the IPTC groups this covers the XMP groups referenced by the alias table.
var IPTCTagPrefixes = []string{
	"IPTC:", "IPTC-IIM:", "XMP-iptc:", "XMP-iptcExt:", "IPTC-dlgsrc:",
	"digsrctype:", "Iptc4xmpExt:", "photoshop:", "Credit",
	"Digital Source Type", "DigitalSourceType", "Profile Copyright",
	"XMP-dc:", "XMP-photoshop:", "XMP-xmpRights:",
}

// JUMBFTagPrefix selects the JUMBF container tags.
const JUMBFTagPrefix = "JUMBF:"

// Partition splits a raw tag map into the IPTC/XMP descriptive subset and the
// JUMBF subset, keeping source order. Tags in neither group are dropped.
func Partition(tags metavalue.Value) (iptc, jumbf *metavalue.Object) {
	iptc = metavalue.NewObject()
	jumbf = metavalue.NewObject()

	obj, ok := tags.AsObject()
	if !ok {
		return iptc, jumbf
	}
	for _, m := range obj.Members() {
		switch {
		case hasAnyPrefix(m.Key, IPTCTagPrefixes):
			iptc.Set(m.Key, m.Value)
		case strings.HasPrefix(m.Key, JUMBFTagPrefix):
			jumbf.Set(m.Key, m.Value)
		}
	}
	return iptc, jumbf
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
