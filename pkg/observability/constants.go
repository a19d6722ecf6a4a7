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

package observability

const (
	AttrAgentID   = "agent.id"
	AttrSessionID = "session.id"
	AttrToolName  = "tool.name"
	AttrVariant   = "language.variant"
	AttrErrorType = "error.type"

	SpanLLMCall        = "loop.llm_call"
	SpanToolDispatch    = "loop.tool_dispatch"
	SpanRemoteOpInvoke  = "remoteop.invoke"
	SpanRelevanceFilter = "relevance.filter"

	DefaultServiceName = "agentcore"
)
