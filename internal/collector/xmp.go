// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
)

const (
	rdfNS   = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	xmlNS   = "http://www.w3.org/XML/1998/namespace"
	xmlnsNS = "xmlns"
)

// xmpGroups maps XMP namespace URIs to exiftool family-1 group names.
var xmpGroups = map[string]string{
	"http://purl.org/dc/elements/1.1/":            "XMP-dc",
	"http://ns.adobe.com/photoshop/1.0/":          "XMP-photoshop",
	"http://iptc.org/std/Iptc4xmpExt/2008-02-29/": "XMP-iptcExt",
	"http://iptc.org/std/Iptc4xmpCore/1.0/xmlns/": "XMP-iptcCore",
	"http://ns.adobe.com/xap/1.0/rights/":         "XMP-xmpRights",
	"http://ns.adobe.com/xap/1.0/mm/":             "XMP-xmpMM",
	"http://ns.adobe.com/xap/1.0/":                "XMP-xmp",
	"http://ns.adobe.com/tiff/1.0/":               "XMP-tiff",
	"http://ns.adobe.com/exif/1.0/":               "XMP-exif",
	"http://cipa.jp/exif/1.0/":                    "XMP-exifEX",
}

// xmlNode is a minimal element tree; XMP needs attribute and child order.
type xmlNode struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*xmlNode
	text     strings.Builder
}

func (n *xmlNode) attr(space, local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Space == space && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

// xmp parses an XMP packet and records each property of every
// rdf:Description as "XMP-<group>:<Name>".
func (tb *tagBuilder) xmp(packet []byte) {
	root, prefixes, err := parseXMLTree(packet)
	if err != nil {
		tb.warn(fmt.Sprintf("XMP: %v", err))
		return
	}
	var visit func(n *xmlNode)
	visit = func(n *xmlNode) {
		if n.name.Space == rdfNS && n.name.Local == "Description" {
			tb.xmpDescription(n, prefixes)
			return
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(root)
}

func (tb *tagBuilder) xmpDescription(desc *xmlNode, prefixes map[string]string) {
	for _, a := range desc.attrs {
		if isSyntaxName(a.Name) {
			continue
		}
		tb.set(xmpTagName(a.Name, prefixes), metavalue.String(a.Value))
	}
	for _, c := range desc.children {
		tb.set(xmpTagName(c.name, prefixes), xmpPropertyValue(c))
	}
}

// xmpPropertyValue converts one property element. Bags and sequences become
// arrays unless they hold a single item; language alternatives resolve to
// their first entry; structures become objects keyed by field name.
func xmpPropertyValue(n *xmlNode) metavalue.Value {
	if res, ok := n.attr(rdfNS, "resource"); ok {
		return metavalue.String(res)
	}

	for _, c := range n.children {
		if c.name.Space != rdfNS {
			continue
		}
		switch c.name.Local {
		case "Seq", "Bag":
			items := listItems(c)
			if len(items) == 1 {
				return items[0]
			}
			return metavalue.Array(items...)
		case "Alt":
			items := listItems(c)
			if len(items) == 0 {
				return metavalue.String("")
			}
			return items[0]
		case "Description":
			return xmpStruct(c)
		}
	}

	if parseType, _ := n.attr(rdfNS, "parseType"); parseType == "Resource" || len(n.children) > 0 || hasPropertyAttrs(n) {
		return xmpStruct(n)
	}
	return metavalue.String(strings.TrimSpace(n.text.String()))
}

func listItems(list *xmlNode) []metavalue.Value {
	var items []metavalue.Value
	for _, li := range list.children {
		if li.name.Space == rdfNS && li.name.Local == "li" {
			items = append(items, xmpPropertyValue(li))
		}
	}
	return items
}

func xmpStruct(n *xmlNode) metavalue.Value {
	obj := metavalue.NewObject()
	for _, a := range n.attrs {
		if isSyntaxName(a.Name) {
			continue
		}
		obj.Set(capitalize(a.Name.Local), metavalue.String(a.Value))
	}
	for _, c := range n.children {
		obj.Set(capitalize(c.name.Local), xmpPropertyValue(c))
	}
	return metavalue.ObjectValue(obj)
}

func hasPropertyAttrs(n *xmlNode) bool {
	for _, a := range n.attrs {
		if !isSyntaxName(a.Name) {
			return true
		}
	}
	return false
}

// isSyntaxName reports names that carry RDF or XML syntax rather than
// property values.
func isSyntaxName(name xml.Name) bool {
	switch name.Space {
	case rdfNS, xmlNS, xmlnsNS, "":
		return true
	}
	return false
}

func xmpTagName(name xml.Name, prefixes map[string]string) string {
	group, ok := xmpGroups[name.Space]
	if !ok {
		prefix := prefixes[name.Space]
		if prefix == "" {
			prefix = "unknown"
		}
		group = "XMP-" + prefix
	}
	return group + ":" + capitalize(name.Local)
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// parseXMLTree builds the element tree and records the prefix declared for
// each namespace URI.
func parseXMLTree(data []byte) (*xmlNode, map[string]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	prefixes := make(map[string]string)

	root := &xmlNode{}
	stack := []*xmlNode{root}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			for _, a := range t.Attr {
				if a.Name.Space == xmlnsNS {
					if _, seen := prefixes[a.Value]; !seen {
						prefixes[a.Value] = a.Name.Local
					}
				}
			}
			n := &xmlNode{name: t.Name, attrs: t.Attr}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, n)
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			stack[len(stack)-1].text.Write(t)
		}
	}
	if len(root.children) == 0 {
		return nil, nil, fmt.Errorf("no XML elements in packet")
	}
	return root, prefixes, nil
}
