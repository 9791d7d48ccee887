// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metavalue

import (
	"fmt"
	"strconv"
	"strings"
)

// Flatten maps every scalar leaf of an object to its path. Object keys are
// joined with "." and array elements are addressed as "[i]", for example
// "assertions[2].data.action". Empty containers contribute nothing and a
// non-object root yields an empty result.
func Flatten(v Value) *Object {
	out := NewObject()
	if v.kind == KindObject {
		flattenInto(out, "", v)
	}
	return out
}

func flattenInto(out *Object, path string, v Value) {
	switch v.kind {
	case KindObject:
		for _, m := range v.obj.members {
			key := m.Key
			if path != "" {
				key = path + "." + m.Key
			}
			flattenInto(out, key, m.Value)
		}
	case KindArray:
		for i, item := range v.arr {
			flattenInto(out, path+"["+strconv.Itoa(i)+"]", item)
		}
	default:
		out.Set(path, v)
	}
}

type pathSegment struct {
	key     string
	index   int
	isIndex bool
}

func splitPath(path string) ([]pathSegment, error) {
	var segs []pathSegment
	i := 0
	for i < len(path) {
		switch path[i] {
		case '.':
			i++
		case '[':
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index in %q", path)
			}
			n, err := strconv.Atoi(path[i+1 : i+end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("bad index %q in %q", path[i+1:i+end], path)
			}
			segs = append(segs, pathSegment{index: n, isIndex: true})
			i += end + 1
		default:
			j := i
			for j < len(path) && path[j] != '.' && path[j] != '[' {
				j++
			}
			segs = append(segs, pathSegment{key: path[i:j]})
			i = j
		}
	}
	if len(segs) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	return segs, nil
}

// expandNode is the mutable form used while rebuilding a tree.
type expandNode struct {
	kind  Kind
	obj   *Object // keys only, values unused; keeps first-seen order
	kids  map[string]*expandNode
	items []*expandNode
	leaf  Value
}

func (n *expandNode) child(seg pathSegment, path string) (*expandNode, error) {
	if seg.isIndex {
		switch n.kind {
		case KindNull:
			n.kind = KindArray
		case KindArray:
		default:
			return nil, fmt.Errorf("path %q indexes into a non-array", path)
		}
		for len(n.items) <= seg.index {
			n.items = append(n.items, nil)
		}
		if n.items[seg.index] == nil {
			n.items[seg.index] = &expandNode{}
		}
		return n.items[seg.index], nil
	}

	switch n.kind {
	case KindNull:
		n.kind = KindObject
		n.obj = NewObject()
		n.kids = make(map[string]*expandNode)
	case KindObject:
	default:
		return nil, fmt.Errorf("path %q uses a key on a non-object", path)
	}
	kid, ok := n.kids[seg.key]
	if !ok {
		kid = &expandNode{}
		n.kids[seg.key] = kid
		n.obj.Set(seg.key, Null())
	}
	return kid, nil
}

func (n *expandNode) value() Value {
	if n == nil {
		return Null()
	}
	switch n.kind {
	case KindObject:
		o := NewObject()
		for _, key := range n.obj.Keys() {
			o.Set(key, n.kids[key].value())
		}
		return ObjectValue(o)
	case KindArray:
		items := make([]Value, len(n.items))
		for i, item := range n.items {
			items[i] = item.value()
		}
		return Array(items...)
	default:
		return n.leaf
	}
}

// Expand rebuilds the nested structure described by a flattened object. It is
// the inverse of Flatten for keys free of '.', '[' and ']'; gaps in array
// indices are filled with null.
func Expand(flat *Object) (Value, error) {
	root := &expandNode{}
	for _, m := range flat.Members() {
		segs, err := splitPath(m.Key)
		if err != nil {
			return Null(), err
		}
		cur := root
		for _, seg := range segs {
			if cur.kind != KindNull && cur.kind != KindArray && cur.kind != KindObject {
				return Null(), fmt.Errorf("path %q descends through a scalar", m.Key)
			}
			cur, err = cur.child(seg, m.Key)
			if err != nil {
				return Null(), err
			}
		}
		if cur.kind == KindArray || cur.kind == KindObject {
			return Null(), fmt.Errorf("path %q replaces a container", m.Key)
		}
		cur.kind = m.Value.kind
		cur.leaf = m.Value
	}
	if root.kind == KindNull {
		return ObjectValue(NewObject()), nil
	}
	return root.value(), nil
}
