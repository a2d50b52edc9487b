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

// Package cor (Chain of Responsibility) provides the building blocks for
// assembling the analysis pipeline as a sequence of commands. This file
// defines the core interfaces that govern the behavior of all components
// within the pattern, so commands, chains, and contexts can be swapped
// independently.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are constant keys used to manage the primary data flow
// within a BaseChain.
const (
	// CtxIn is the default key for the primary input of a command. The
	// BaseChain populates it with the output of the previous command.
	CtxIn = "__IN__"
	// CtxOut is the default key where a command places its primary output.
	// The BaseChain picks it up and hands it to the next command as input.
	CtxOut = "__OUT__"
)

// ProgressReporter receives phase-completion updates as a chain runs. The
// job registry implements it so pollers see live progress; tests use a
// recording fake.
type ProgressReporter interface {
	// ReportProgress records that the workflow has reached the given
	// fraction of completion, annotated with a human-readable phase message.
	ReportProgress(progress float64, message string)
}

// Context is the shared state object passed through a chain of commands. It
// acts as a property bag for a single workflow execution, carrying data,
// errors, progress, and temp-file bookkeeping between commands.
type Context interface {
	// SetContext sets the standard Go `context.Context`, used for
	// cancellation signals and OpenTelemetry trace propagation.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go `context.Context`.
	GetContext() context.Context

	// Add stores a key-value pair. This is the primary way commands share
	// data. It returns the Context for fluent chaining.
	Add(key string, value interface{}) Context

	// AddError records an error from a command. The key should be the name
	// of the command that produced the error.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the workflow.
	GetErrors() map[string]error

	// Get retrieves a value by its key, or nil.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool

	// ReportProgress forwards a progress update to the attached reporter,
	// if any. Safe to call on a context with no reporter.
	ReportProgress(progress float64, message string)

	// SetProgressReporter attaches the reporter that ReportProgress
	// forwards to.
	SetProgressReporter(reporter ProgressReporter)

	// AddTempFile tracks a temporary file created during the workflow so
	// Close can remove it.
	AddTempFile(file string)

	// GetTempFiles returns all tracked temporary file paths.
	GetTempFiles() []string

	// Close removes all tracked temporary files. Defer it at the start of
	// a workflow run.
	Close()
}

// Executable is any object with a core execution step.
type Executable interface {
	// Execute runs the object's business logic, reading inputs from and
	// writing outputs to the given Context.
	Execute(context Context)
}

// Command is an atomic, testable, thread-safe unit of work. It is the
// fundamental building block of a workflow.
type Command interface {
	Executable

	// GetName returns the unique name of the command, used for logging and
	// telemetry.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary
	// output to.
	GetOutputParam() string

	// IsExecutable is a precondition check run before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for creating metrics.
	GetMeter() metric.Meter

	// GetSuccessCounter returns a metric counter for successful executions.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns a metric counter for failed executions.
	GetErrorCounter() metric.Int64Counter
}

// Chain is a sequence of commands. It is itself a Command, so chains can be
// nested (Composite pattern). The Chain orchestrates the execution of its
// child commands and the piping of data between them.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after
	// a command records an error.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
