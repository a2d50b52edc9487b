// Copyright 2025 Series Automation Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// This file defines `BaseContext`, the default implementation of the
// `Context` interface: a property bag passed through the whole chain,
// carrying data, errors, progress routing, and temp-file bookkeeping.
package cor

import (
	"context"
	"log"
	"os"
)

// BaseContext is the default implementation of the Context interface. It
// holds the shared state for one workflow execution. It is not safe for
// concurrent mutation; each workflow run owns its own instance.
type BaseContext struct {
	data      map[string]interface{} // Arbitrary key-value data shared between commands.
	errors    map[string]error       // Errors keyed by the command name that produced them.
	tempFiles []string               // Paths of temporary files to remove on Close.
	reporter  ProgressReporter       // Destination for ReportProgress calls; may be nil.
	context   context.Context        // Go context for cancellation and trace propagation.
}

// NewBaseContext returns a new, empty context object.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
	}
}

// SetContext sets the underlying standard Go context. The BaseChain uses
// this to scope OpenTelemetry spans per command.
func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

// GetContext retrieves the underlying standard Go context.
func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// SetProgressReporter attaches the reporter that receives ReportProgress
// updates for this workflow run.
func (c *BaseContext) SetProgressReporter(reporter ProgressReporter) {
	c.reporter = reporter
}

// ReportProgress forwards a progress update to the attached reporter. With
// no reporter attached it is a no-op, which keeps commands testable in
// isolation.
func (c *BaseContext) ReportProgress(progress float64, message string) {
	if c.reporter != nil {
		c.reporter.ReportProgress(progress, message)
	}
}

// Close removes all temporary files tracked by the context. Defer it at the
// start of a workflow run.
func (c *BaseContext) Close() {
	for _, file := range c.GetTempFiles() {
		err := os.Remove(file)
		if err != nil {
			log.Printf("failed to remove temporary file '%s': %v\n", file, err)
		}
	}
}

// Add stores a key-value pair in the context's data map and returns the
// context for fluent chaining.
func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

// AddTempFile adds a file path to the list of temporary files that need
// cleanup.
func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

// GetTempFiles returns the slice of all tracked temporary file paths.
func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

// AddError records an error in the context's error map, keyed by the command
// name that produced it.
func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

// GetErrors returns the map of all errors collected during the workflow.
func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

// Get retrieves a value from the context's data map, or nil if the key does
// not exist.
func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

// Remove deletes a key-value pair from the context's data map.
func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

// HasErrors reports whether any errors have been added to the context.
func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}
