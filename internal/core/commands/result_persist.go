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

// This file defines the persistence step: the finished result is written to
// the result store so it survives process restarts. The job registry is
// updated by the workflow runner after the chain completes, not here, so a
// failed write surfaces as a failed job rather than a completed one with no
// file behind it.
package commands

import (
	"fmt"

	"github.com/i-kohan/series-automation/internal/core/cor"
	"github.com/i-kohan/series-automation/internal/core/model"
	"github.com/i-kohan/series-automation/internal/core/services"
)

// ResultPersist writes the AnalysisResult to durable storage.
type ResultPersist struct {
	cor.BaseCommand
	store *services.ResultStore
}

// NewResultPersist constructs the command.
func NewResultPersist(name string, store *services.ResultStore) *ResultPersist {
	return &ResultPersist{BaseCommand: *cor.NewBaseCommand(name), store: store}
}

// Execute saves the result under the task id and passes it through.
func (c *ResultPersist) Execute(context cor.Context) {
	result := context.Get(c.GetInputParam()).(*model.AnalysisResult)
	request := context.Get(GetRequestParamName()).(*model.AnalysisRequest)

	if err := c.store.Save(request.TaskID, result); err != nil {
		c.GetErrorCounter().Add(context.GetContext(), 1)
		context.AddError(c.GetName(), fmt.Errorf("persist result: %w", err))
		return
	}

	c.GetSuccessCounter().Add(context.GetContext(), 1)
	context.Add(cor.CtxOut, result)
}
