// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package collector

import (
	"bytes"
	"fmt"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// exifWalker copies every decoded EXIF field into the tag builder.
type exifWalker struct {
	tb *tagBuilder
}

// Walk implements exif.Walker.
func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	if tag == nil {
		return nil
	}
	val := tag.String()
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		val = val[1 : len(val)-1]
	}
	w.tb.set("EXIF:"+string(name), metavalue.String(val))
	return nil
}

// exif decodes a TIFF-structured EXIF block.
func (tb *tagBuilder) exif(data []byte) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		tb.warn(fmt.Sprintf("EXIF: %v", err))
	}
	// Decode can return the tags it managed to read alongside an error.
	if x == nil {
		return
	}
	if err := x.Walk(exifWalker{tb: tb}); err != nil {
		tb.warn(fmt.Sprintf("EXIF: %v", err))
	}
}
