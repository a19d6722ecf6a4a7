// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package loop

// Outcome classifies how a session ended.
type Outcome string

const (
	// OutcomeTerminated means the model's own terminal tool call ended
	// the session.
	OutcomeTerminated Outcome = "terminated"

	// OutcomeIterationLimit means the loop synthesised a terminate call
	// because MaxIterations was reached.
	OutcomeIterationLimit Outcome = "iteration_limit"

	// OutcomeCancelled means the loop observed the action-context's
	// cancellation flag before an LLM or tool call and stopped.
	OutcomeCancelled Outcome = "cancelled"

	// OutcomeParseFailureExhausted means the model never produced a
	// parseable, known tool call within the configured retry budget.
	OutcomeParseFailureExhausted Outcome = "parse_failure_exhausted"
)

// Result is what Run returns: the terminal tool's own return value, plus
// bookkeeping about how the session got there.
type Result struct {
	Value      any
	Outcome    Outcome
	Iterations int
}
