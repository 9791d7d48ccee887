// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package metavalue

// VisitFunc receives every object member reached during a walk.
type VisitFunc func(key string, value Value)

// Walk visits every object member in v, at any depth, in document order.
// Each member is visited before its own value is descended into; array
// elements are descended into without a visit of their own.
func Walk(v Value, visit VisitFunc) {
	switch v.kind {
	case KindObject:
		for _, m := range v.obj.members {
			visit(m.Key, m.Value)
			Walk(m.Value, visit)
		}
	case KindArray:
		for _, item := range v.arr {
			Walk(item, visit)
		}
	case KindNull, KindBool, KindNumber, KindString:
	}
}
