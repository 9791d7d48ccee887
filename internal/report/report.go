// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package report defines the per-file scan record and its interchange shape.
package report

import (
	"encoding/json"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/provenance"
)

// Report is the result of scanning one file.
type Report struct {
	File string
	// MIMEType is empty when the type could not be determined.
	MIMEType    string
	C2PAPresent bool
	// C2PARaw is the manifest store as read, nil when absent.
	C2PARaw   *metavalue.Value
	C2PAError string

	// C2PAOnly reports were produced without running the tag collector; the
	// fields below are then unset and omitted from output.
	C2PAOnly bool

	IPTC             *metavalue.Object
	JUMBFRaw         *metavalue.Object
	ExiftoolWarnings []string
	Analysis         *Analysis
}

// Analysis holds the canonical facts derived from the raw metadata.
type Analysis struct {
	IPTCNormalized     provenance.IPTCFacts `json:"iptc_normalized" yaml:"iptc_normalized"`
	IPTCSourcesMapping provenance.SourceMap `json:"iptc_sources_mapping" yaml:"iptc_sources_mapping"`
	C2PANormalized     provenance.C2PAFacts `json:"c2pa_normalized" yaml:"c2pa_normalized"`
}

// c2paOnlyRecord is the serialized shape of a c2pa-only report.
type c2paOnlyRecord struct {
	File        string           `json:"file" yaml:"file"`
	MIMEType    *string          `json:"mime_type" yaml:"mime_type"`
	C2PAPresent bool             `json:"c2pa_present" yaml:"c2pa_present"`
	C2PARaw     *metavalue.Value `json:"c2pa_raw,omitempty" yaml:"c2pa_raw,omitempty"`
	C2PAError   string           `json:"c2pa_error,omitempty" yaml:"c2pa_error,omitempty"`
}

// fullRecord is the serialized shape of a full report.
type fullRecord struct {
	File             string            `json:"file" yaml:"file"`
	MIMEType         *string           `json:"mime_type" yaml:"mime_type"`
	C2PAPresent      bool              `json:"c2pa_present" yaml:"c2pa_present"`
	C2PARaw          *metavalue.Value  `json:"c2pa_raw,omitempty" yaml:"c2pa_raw,omitempty"`
	C2PAError        string            `json:"c2pa_error,omitempty" yaml:"c2pa_error,omitempty"`
	IPTC             *metavalue.Object `json:"iptc" yaml:"iptc"`
	JUMBFRaw         *metavalue.Object `json:"jumbf_raw" yaml:"jumbf_raw"`
	ExiftoolWarnings []string          `json:"exiftool_warnings" yaml:"exiftool_warnings"`
	Analysis         *Analysis         `json:"analysis" yaml:"analysis"`
}

func (r *Report) record() interface{} {
	var mime *string
	if r.MIMEType != "" {
		mime = &r.MIMEType
	}
	if r.C2PAOnly {
		return c2paOnlyRecord{
			File:        r.File,
			MIMEType:    mime,
			C2PAPresent: r.C2PAPresent,
			C2PARaw:     r.C2PARaw,
			C2PAError:   r.C2PAError,
		}
	}

	rec := fullRecord{
		File:             r.File,
		MIMEType:         mime,
		C2PAPresent:      r.C2PAPresent,
		C2PARaw:          r.C2PARaw,
		C2PAError:        r.C2PAError,
		IPTC:             r.IPTC,
		JUMBFRaw:         r.JUMBFRaw,
		ExiftoolWarnings: r.ExiftoolWarnings,
		Analysis:         r.Analysis,
	}
	if rec.IPTC == nil {
		rec.IPTC = metavalue.NewObject()
	}
	if rec.JUMBFRaw == nil {
		rec.JUMBFRaw = metavalue.NewObject()
	}
	if rec.ExiftoolWarnings == nil {
		rec.ExiftoolWarnings = []string{}
	}
	return rec
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.record())
}

func (r *Report) MarshalYAML() (interface{}, error) {
	return r.record(), nil
}
