// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package provenance

// TriState is a boolean that may also be unknown.
type TriState int

const (
	Unknown TriState = iota
	True
	False
)

// TriStateOf converts a plain boolean.
func TriStateOf(b bool) TriState {
	if b {
		return True
	}
	return False
}

func (t TriState) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes unknown as null.
func (t TriState) MarshalJSON() ([]byte, error) {
	switch t {
	case True:
		return []byte("true"), nil
	case False:
		return []byte("false"), nil
	default:
		return []byte("null"), nil
	}
}

// MarshalYAML encodes unknown as null.
func (t TriState) MarshalYAML() (interface{}, error) {
	switch t {
	case True:
		return true, nil
	case False:
		return false, nil
	default:
		return nil, nil
	}
}
