// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scanner

import (
	"context"

	"github.com/abrignoni/AI-Provenance-Scanner/internal/collector"
	"github.com/abrignoni/AI-Provenance-Scanner/internal/metavalue"
)

// Sniffer determines the media type of a file.
type Sniffer interface {
	Sniff(path string) (string, bool)
}

// TagCollector returns the raw descriptive tags of a file.
type TagCollector interface {
	Collect(ctx context.Context, path string) (*collector.Result, error)
	Name() string
}

// ManifestReader returns the content-credential manifest store of a file,
// or nil when there is none.
type ManifestReader interface {
	Read(ctx context.Context, path, mimeType string) (*metavalue.Value, error)
}
