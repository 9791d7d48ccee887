// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package provenance

import (
	"sort"
	"strings"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
)

// AI signal keys as they appear in C2PA assertions. Matched case-sensitively.
const (
	KeyTrainedAlgorithmicMedia = "trainedAlgorithmicMedia"
	KeyCompositeSynthetic      = "compositeSynthetic"
	KeyDigitalArt              = "digitalArt"
	KeyVirtualRecording        = "virtualRecording"
)

// AIKeys are the fact names whose truthy values signal synthetic media.
var AIKeys = []string{
	string(FieldDigitalSourceType),
	KeyTrainedAlgorithmicMedia,
	KeyDigitalArt,
	KeyCompositeSynthetic,
	KeyVirtualRecording,
}

// IsAIKey reports whether name is one of AIKeys.
func IsAIKey(name string) bool {
	for _, k := range AIKeys {
		if k == name {
			return true
		}
	}
	return false
}

// ActionSet is an unordered, deduplicated set of C2PA action identifiers.
type ActionSet map[string]struct{}

// Add inserts an action.
func (s ActionSet) Add(action string) { s[action] = struct{}{} }

// Has reports whether action is present.
func (s ActionSet) Has(action string) bool {
	_, ok := s[action]
	return ok
}

// Sorted returns the actions as a sorted slice, the interchange form.
func (s ActionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for a := range s {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON emits the set as a sorted array.
func (s ActionSet) MarshalJSON() ([]byte, error) {
	items := make([]metavalue.Value, 0, len(s))
	for _, a := range s.Sorted() {
		items = append(items, metavalue.String(a))
	}
	return metavalue.Array(items...).MarshalJSON()
}

// MarshalYAML emits the set as a sorted sequence.
func (s ActionSet) MarshalYAML() (interface{}, error) { return s.Sorted(), nil }

// C2PAFacts is the fixed-shape summary of a content-credential manifest store.
type C2PAFacts struct {
	Signed                  bool              `json:"signed" yaml:"signed"`
	Actions                 ActionSet         `json:"actions" yaml:"actions"`
	Generator               metavalue.Value   `json:"generator" yaml:"generator"`
	Issuer                  metavalue.Value   `json:"issuer" yaml:"issuer"`
	CommonName              metavalue.Value   `json:"common_name" yaml:"common_name"`
	ClaimGenerator          metavalue.Value   `json:"claim_generator" yaml:"claim_generator"`
	TrainedAlgorithmicMedia metavalue.Value   `json:"trainedAlgorithmicMedia" yaml:"trainedAlgorithmicMedia"`
	CompositeSynthetic      metavalue.Value   `json:"compositeSynthetic" yaml:"compositeSynthetic"`
	DigitalArt              metavalue.Value   `json:"digitalArt" yaml:"digitalArt"`
	VirtualRecording        metavalue.Value   `json:"virtualRecording" yaml:"virtualRecording"`
	CredentialDate          metavalue.Value   `json:"credential_date" yaml:"credential_date"`
	FlattenedManifest       *metavalue.Object `json:"flattened_manifest" yaml:"flattened_manifest"`
}

// NamedField pairs a report label with a scalar fact.
type NamedField struct {
	Name  string
	Value metavalue.Value
}

// NamedFields lists the scalar facts in report order, excluding actions and
// the flattened manifest.
func (f C2PAFacts) NamedFields() []NamedField {
	return []NamedField{
		{"signed", metavalue.Bool(f.Signed)},
		{"generator", f.Generator},
		{"issuer", f.Issuer},
		{"common_name", f.CommonName},
		{"claim_generator", f.ClaimGenerator},
		{KeyTrainedAlgorithmicMedia, f.TrainedAlgorithmicMedia},
		{KeyCompositeSynthetic, f.CompositeSynthetic},
		{KeyDigitalArt, f.DigitalArt},
		{KeyVirtualRecording, f.VirtualRecording},
		{"credential_date", f.CredentialDate},
	}
}

func emptyC2PAFacts() C2PAFacts {
	return C2PAFacts{
		Actions:           make(ActionSet),
		FlattenedManifest: metavalue.NewObject(),
	}
}

// c2paRule claims a key for one fact. Rules are tried in order and the first
// whose guard holds takes the key; a rule whose scalar fact is already
// populated lets the key fall through to later rules.
type c2paRule struct {
	matches func(key, lower string, value metavalue.Value) bool
	// slot is the scalar fact filled by the rule; nil for the actions rule.
	slot func(*C2PAFacts) *metavalue.Value
}

func lowerIs(names ...string) func(key, lower string, value metavalue.Value) bool {
	return func(_, lower string, _ metavalue.Value) bool {
		for _, n := range names {
			if lower == n {
				return true
			}
		}
		return false
	}
}

func exactly(name string) func(key, lower string, value metavalue.Value) bool {
	return func(key, _ string, _ metavalue.Value) bool { return key == name }
}

func isActionList(_, lower string, value metavalue.Value) bool {
	return lower == "actions" && value.Kind() == metavalue.KindArray
}

var c2paRules = []c2paRule{
	{lowerIs("issuer"), func(f *C2PAFacts) *metavalue.Value { return &f.Issuer }},
	{lowerIs("common_name"), func(f *C2PAFacts) *metavalue.Value { return &f.CommonName }},
	{lowerIs("claim_generator"), func(f *C2PAFacts) *metavalue.Value { return &f.ClaimGenerator }},
	{
		func(_, lower string, _ metavalue.Value) bool { return strings.HasSuffix(lower, "generator") },
		func(f *C2PAFacts) *metavalue.Value { return &f.Generator },
	},
	{isActionList, nil},
	{exactly(KeyTrainedAlgorithmicMedia), func(f *C2PAFacts) *metavalue.Value { return &f.TrainedAlgorithmicMedia }},
	{exactly(KeyCompositeSynthetic), func(f *C2PAFacts) *metavalue.Value { return &f.CompositeSynthetic }},
	{exactly(KeyDigitalArt), func(f *C2PAFacts) *metavalue.Value { return &f.DigitalArt }},
	{exactly(KeyVirtualRecording), func(f *C2PAFacts) *metavalue.Value { return &f.VirtualRecording }},
	{lowerIs("time", "signed_date"), func(f *C2PAFacts) *metavalue.Value { return &f.CredentialDate }},
}

func (facts *C2PAFacts) visit(key string, value metavalue.Value) {
	lower := strings.ToLower(key)
	for _, rule := range c2paRules {
		if !rule.matches(key, lower, value) {
			continue
		}
		if rule.slot == nil {
			items, _ := value.AsArray()
			for _, item := range items {
				if s, ok := item.AsString(); ok {
					facts.Actions.Add(s)
				}
			}
			return
		}
		if dst := rule.slot(facts); !dst.Truthy() {
			*dst = value
			return
		}
	}
}

// ExtractC2PA summarizes a manifest store. A nil tree means no manifest was
// found and yields unsigned, empty facts. Otherwise each manifest under
// "manifests" is flattened into FlattenedManifest (later manifests overwrite
// colliding paths) and walked for known keys (first populated value wins).
func ExtractC2PA(tree *metavalue.Value) C2PAFacts {
	facts := emptyC2PAFacts()
	if tree == nil {
		return facts
	}
	facts.Signed = true

	manifests, ok := tree.Get("manifests")
	if !ok {
		return facts
	}
	store, ok := manifests.AsObject()
	if !ok {
		return facts
	}
	for _, m := range store.Members() {
		facts.FlattenedManifest.Merge(metavalue.Flatten(m.Value))
		metavalue.Walk(m.Value, facts.visit)
	}
	return facts
}
