// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package provenance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
)

func mustParse(t *testing.T, doc string) metavalue.Value {
	t.Helper()
	v, err := metavalue.Parse([]byte(doc))
	require.NoError(t, err)
	return v
}

func sourceTag(t *testing.T, sources SourceMap, field Field) string {
	t.Helper()
	tag, ok := sources.Get(field)
	require.True(t, ok, "no source for %s", field)
	return tag
}

func TestNormalizeIPTC_FieldsInFillOrder(t *testing.T) {
	raw := mustParse(t, `{"XMP-xmpRights:UsageTerms": "u", "IPTC:By-line": "c"}`)

	facts, sources := NormalizeIPTC(raw)

	assert.Equal(t, []Field{FieldUsageTerms, FieldCreator}, facts.Fields())
	assert.Equal(t, []string{"usage_terms", "creator", "ai_generated"}, facts.Object().Keys())
	assert.Equal(t, []string{"usage_terms", "creator"}, sources.Object().Keys())
}

func TestNormalizeIPTC_FirstInTraversalWins(t *testing.T) {
	raw := mustParse(t, `{"IPTC:By-line": "Jane Doe", "XMP-dc:Creator": "J.D."}`)

	facts, sources := NormalizeIPTC(raw)

	creator, ok := facts.Get(FieldCreator)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", creator.String())
	assert.Equal(t, "IPTC:By-line", sourceTag(t, sources, FieldCreator))
}

func TestNormalizeIPTC_TraversalOrderBeatsAliasPriority(t *testing.T) {
	// XMP-dc:Creator is the lower priority alias but is encountered first.
	raw := mustParse(t, `{"XMP-dc:Creator": "J.D.", "IPTC:By-line": "Jane Doe"}`)

	facts, sources := NormalizeIPTC(raw)

	creator, _ := facts.Get(FieldCreator)
	assert.Equal(t, "J.D.", creator.String())
	assert.Equal(t, "XMP-dc:Creator", sourceTag(t, sources, FieldCreator))
}

func TestNormalizeIPTC_NestedKeysAreSearched(t *testing.T) {
	raw := mustParse(t, `{
		"XMP-iptcExt:ArtworkOrObject": [
			{"IPTC:Credit": "Agency"},
			{"IPTC:Credit": "Other Agency"}
		],
		"wrapper": {"deeper": {"XMP-xmpRights:UsageTerms": "CC-BY"}}
	}`)

	facts, sources := NormalizeIPTC(raw)

	credit, ok := facts.Get(FieldCreditLine)
	require.True(t, ok)
	assert.Equal(t, "Agency", credit.String())
	assert.Equal(t, "IPTC:Credit", sourceTag(t, sources, FieldCreditLine))

	terms, ok := facts.Get(FieldUsageTerms)
	require.True(t, ok)
	assert.Equal(t, "CC-BY", terms.String())
}

func TestNormalizeIPTC_NestedValueKeptVerbatim(t *testing.T) {
	raw := mustParse(t, `{"XMP-dc:Description": {"lang": "en", "IPTC:By-line": "Inner"}}`)

	facts, sources := NormalizeIPTC(raw)

	desc, ok := facts.Get(FieldDescription)
	require.True(t, ok)
	assert.Equal(t, metavalue.KindObject, desc.Kind())
	assert.Equal(t, `{"lang":"en","IPTC:By-line":"Inner"}`, desc.String())

	// Traversal still descends into the matched value for other fields.
	creator, ok := facts.Get(FieldCreator)
	require.True(t, ok)
	assert.Equal(t, "Inner", creator.String())
	assert.Equal(t, "IPTC:By-line", sourceTag(t, sources, FieldCreator))
}

func TestNormalizeIPTC_SourcesOneToOne(t *testing.T) {
	raw := mustParse(t, `{
		"IPTC:Caption-Abstract": "caption",
		"XMP-dc:Description": "description",
		"Profile Copyright": "ICC",
		"IPTC-dlgsrc:digitalArt": true,
		"Unrelated": "x"
	}`)

	facts, sources := NormalizeIPTC(raw)

	assert.Equal(t, facts.Len(), sources.Len())
	for _, field := range facts.Fields() {
		_, ok := sources.Get(field)
		assert.True(t, ok, "no source for %s", field)
	}
	assert.Equal(t, "IPTC:Caption-Abstract", sourceTag(t, sources, FieldDescription))
	assert.Equal(t, "Profile Copyright", sourceTag(t, sources, FieldProfileCopyright))
	assert.Equal(t, "IPTC-dlgsrc:digitalArt", sourceTag(t, sources, FieldDigitalArt))
}

func TestNormalizeIPTC_AliasMatchIsCaseSensitive(t *testing.T) {
	raw := mustParse(t, `{"iptc:by-line": "lower"}`)

	facts, sources := NormalizeIPTC(raw)

	assert.Equal(t, 0, facts.Len())
	assert.Equal(t, 0, sources.Len())
}

func TestNormalizeIPTC_AIGenerated(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want TriState
	}{
		{"digital capture any case", `{"Digital Source Type": "digitalCapture"}`, False},
		{"original photograph", `{"XMP-iptcExt:DigitalSourceType": "OriginalPhotograph"}`, False},
		{"trained algorithmic media", `{"DigitalSourceType": "trainedAlgorithmicMedia"}`, True},
		{"uri is not a bare code", `{"DigitalSourceType": "http://cv.iptc.org/newscodes/digitalsourcetype/digitalCapture"}`, True},
		{"empty string", `{"DigitalSourceType": ""}`, True},
		{"absent", `{"IPTC:By-line": "x"}`, Unknown},
		{"non-string", `{"DigitalSourceType": 5}`, Unknown},
		{"nested structure", `{"DigitalSourceType": {"value": "digitalCapture"}}`, Unknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			facts, _ := NormalizeIPTC(mustParse(t, tc.doc))
			assert.Equal(t, tc.want, facts.AIGenerated)
		})
	}
}

func TestNormalizeIPTC_EmptyInput(t *testing.T) {
	facts, sources := NormalizeIPTC(metavalue.Null())
	assert.Equal(t, 0, facts.Len())
	assert.Equal(t, 0, sources.Len())
	assert.Equal(t, Unknown, facts.AIGenerated)
}

func TestIPTCFacts_JSONShapeFollowsFillOrder(t *testing.T) {
	raw := mustParse(t, `{
		"XMP-iptcExt:DigitalSourceType": "trainedAlgorithmicMedia",
		"IPTC:By-line": "Jane Doe"
	}`)
	facts, sources := NormalizeIPTC(raw)

	out, err := json.Marshal(facts)
	require.NoError(t, err)
	assert.Equal(t, `{"digital_source_type":"trainedAlgorithmicMedia","creator":"Jane Doe","ai_generated":true}`, string(out))

	out, err = json.Marshal(sources)
	require.NoError(t, err)
	assert.Equal(t, `{"digital_source_type":"XMP-iptcExt:DigitalSourceType","creator":"IPTC:By-line"}`, string(out))

	empty, _ := NormalizeIPTC(metavalue.Null())
	out, err = json.Marshal(empty)
	require.NoError(t, err)
	assert.Equal(t, `{"ai_generated":null}`, string(out))
}

func TestTriState(t *testing.T) {
	assert.Equal(t, True, TriStateOf(true))
	assert.Equal(t, False, TriStateOf(false))
	assert.Equal(t, "unknown", Unknown.String())

	out, err := json.Marshal(map[string]TriState{"a": True, "b": False, "c": Unknown})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":true,"b":false,"c":null}`, string(out))
}
