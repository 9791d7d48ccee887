// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package provenance

import (
	"encoding/json"
	"strings"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
)

// Field names a canonical IPTC fact.
type Field string

const (
	FieldCreator                 Field = "creator"
	FieldCreditLine              Field = "credit_line"
	FieldCopyrightNotice         Field = "copyright_notice"
	FieldProfileCopyright        Field = "profile_copyright"
	FieldDescription             Field = "description"
	FieldDigitalSourceType       Field = "digital_source_type"
	FieldTrainedAlgorithmicMedia Field = "trained_algorithmic_media"
	FieldDigitalArt              Field = "digital_art"
	FieldUsageTerms              Field = "usage_terms"

	// FieldAIGenerated is derived from FieldDigitalSourceType, never read from a tag.
	FieldAIGenerated Field = "ai_generated"
)

// Alias lists the raw tag names accepted for one canonical field, highest
// priority first.
type Alias struct {
	Field Field
	Tags  []string
}

// AliasTable holds the alias lists used for matching. Matching is decided by
// traversal order of the raw tags; the order within Tags is informational.
var AliasTable = []Alias{
	{FieldCreator, []string{"IPTC:By-line", "XMP-dc:Creator", "XMP-iptc:Creator"}},
	{FieldCreditLine, []string{"IPTC:Credit", "XMP-photoshop:Credit", "photoshop:Credit", "Credit"}},
	{FieldCopyrightNotice, []string{"IPTC:CopyrightNotice", "XMP-dc:Rights"}},
	{FieldProfileCopyright, []string{"Profile Copyright"}},
	{FieldDescription, []string{"IPTC:Caption-Abstract", "XMP-dc:Description"}},
	{FieldDigitalSourceType, []string{
		"XMP-iptcExt:DigitalSourceType",
		"IPTC-dlgsrc:DigitalSourceType",
		"digsrctype:compositeWithTrainedAlgorithmicMedia",
		"Iptc4xmpExt:DigitalSourceType",
		"Digital Source Type",
		"DigitalSourceType",
	}},
	{FieldTrainedAlgorithmicMedia, []string{"IPTC-dlgsrc:trainedAlgorithmicMedia"}},
	{FieldDigitalArt, []string{"IPTC-dlgsrc:digitalArt"}},
	{FieldUsageTerms, []string{"XMP-xmpRights:UsageTerms"}},
}

// captureSourceTypes are the digital source types that indicate a camera
// original rather than synthetic media. Compared lower-cased.
var captureSourceTypes = map[string]bool{
	"originalphotograph": true,
	"digitalcapture":     true,
}

// IPTCFacts holds the canonical IPTC values resolved for one file.
type IPTCFacts struct {
	values      map[Field]metavalue.Value
	order       []Field
	AIGenerated TriState
}

// Get returns the value resolved for field.
func (f IPTCFacts) Get(field Field) (metavalue.Value, bool) {
	v, ok := f.values[field]
	return v, ok
}

// Len returns how many canonical fields were populated from tags.
func (f IPTCFacts) Len() int { return len(f.order) }

// Fields returns the populated fields in the order they were filled.
func (f IPTCFacts) Fields() []Field {
	return append([]Field(nil), f.order...)
}

// Object renders the facts as an ordered object: populated fields in fill
// order followed by ai_generated.
func (f IPTCFacts) Object() *metavalue.Object {
	o := metavalue.NewObject()
	for _, field := range f.order {
		o.Set(string(field), f.values[field])
	}
	switch f.AIGenerated {
	case True:
		o.Set(string(FieldAIGenerated), metavalue.Bool(true))
	case False:
		o.Set(string(FieldAIGenerated), metavalue.Bool(false))
	default:
		o.Set(string(FieldAIGenerated), metavalue.Null())
	}
	return o
}

func (f IPTCFacts) MarshalJSON() ([]byte, error) { return json.Marshal(f.Object()) }

func (f IPTCFacts) MarshalYAML() (interface{}, error) { return f.Object(), nil }

// SourceMap records, per canonical field, which raw tag supplied the value.
type SourceMap struct {
	tags  map[Field]string
	order []Field
}

// Get returns the raw tag that populated field.
func (s SourceMap) Get(field Field) (string, bool) {
	tag, ok := s.tags[field]
	return tag, ok
}

// Len returns the number of mapped fields.
func (s SourceMap) Len() int { return len(s.order) }

// Object renders the mapping in fill order.
func (s SourceMap) Object() *metavalue.Object {
	o := metavalue.NewObject()
	for _, field := range s.order {
		o.Set(string(field), metavalue.String(s.tags[field]))
	}
	return o
}

func (s SourceMap) MarshalJSON() ([]byte, error) { return json.Marshal(s.Object()) }

func (s SourceMap) MarshalYAML() (interface{}, error) { return s.Object(), nil }

// iptcAccumulator is threaded through one traversal of a raw tag map.
type iptcAccumulator struct {
	values map[Field]metavalue.Value
	tags   map[Field]string
	order  []Field
}

func (acc *iptcAccumulator) visit(key string, value metavalue.Value) {
	for _, alias := range AliasTable {
		if _, done := acc.values[alias.Field]; done {
			continue
		}
		for _, tag := range alias.Tags {
			if key == tag {
				acc.values[alias.Field] = value
				acc.tags[alias.Field] = key
				acc.order = append(acc.order, alias.Field)
				break
			}
		}
	}
}

// NormalizeIPTC resolves the canonical IPTC fields from a raw tag map. Every
// key at every depth is considered in traversal order and the first matching
// key populates a field; later matches never overwrite it, whatever their
// alias priority. Matched values are kept verbatim, including nested ones.
func NormalizeIPTC(raw metavalue.Value) (IPTCFacts, SourceMap) {
	acc := &iptcAccumulator{
		values: make(map[Field]metavalue.Value),
		tags:   make(map[Field]string),
	}
	metavalue.Walk(raw, acc.visit)

	facts := IPTCFacts{values: acc.values, order: acc.order}
	facts.AIGenerated = ClassifyDigitalSourceType(acc.values[FieldDigitalSourceType])
	return facts, SourceMap{tags: acc.tags, order: acc.order}
}

// ClassifyDigitalSourceType derives the AI-generated signal. A string source
// type is AI-generated unless it names a camera original; anything else is
// unknown.
func ClassifyDigitalSourceType(dst metavalue.Value) TriState {
	s, ok := dst.AsString()
	if !ok {
		return Unknown
	}
	return TriStateOf(!captureSourceTypes[strings.ToLower(s)])
}
