// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package observability

import (
	"encoding/json"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// StandardObserver records operation timings for one scan run
type StandardObserver struct {
	level         ObservabilityLevel
	writer        io.Writer
	runID         string
	seq           atomic.Int64
	DebugObserver *DebugObserver // Set when running with --debug
}

type ObservabilityLevel int

const (
	ObservabilityOff     ObservabilityLevel = 0
	ObservabilityMetrics ObservabilityLevel = 1
	ObservabilityDebug   ObservabilityLevel = 2
)

// NewStandardObserver creates an observer with a fresh run id
func NewStandardObserver(level ObservabilityLevel, writer io.Writer) *StandardObserver {
	return &StandardObserver{
		level:  level,
		writer: writer,
		runID:  uuid.NewString(),
	}
}

// RunID identifies every record emitted during this run
func (o *StandardObserver) RunID() string {
	return o.runID
}

// StartTiming returns a function to complete timing
func (o *StandardObserver) StartTiming(component, operation, filePath string) func(success bool, metadata map[string]interface{}) {
	start := time.Now()

	return func(success bool, metadata map[string]interface{}) {
		o.LogOperation(StandardObservabilityData{
			Component:  component,
			Operation:  operation,
			FilePath:   filePath,
			DurationMs: time.Since(start).Milliseconds(),
			Success:    success,
			Metadata:   metadata,
		})
	}
}

// LogOperation writes one JSON record per operation in debug mode
func (o *StandardObserver) LogOperation(data StandardObservabilityData) {
	if o == nil || o.level != ObservabilityDebug {
		return
	}

	data.RunID = o.runID
	data.RequestID = fmt.Sprintf("%s-%d", o.runID[:8], o.seq.Add(1))
	_ = json.NewEncoder(o.writer).Encode(data)
}

// StandardObservabilityData is one operation record
type StandardObservabilityData struct {
	Component  string                 `json:"component"`
	Operation  string                 `json:"operation"`
	RunID      string                 `json:"run_id"`
	RequestID  string                 `json:"request_id"`
	FilePath   string                 `json:"file_path,omitempty"`
	DurationMs int64                  `json:"duration_ms,omitempty"`
	Success    bool                   `json:"success"`
	Error      string                 `json:"error,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}
