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

package action

// DefaultCatalog returns a Catalog pre-populated with the built-in tools
// every agentcore deployment needs, foremost the mandatory terminator.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	c.MustRegister(terminateDescriptor())
	return c
}

// terminateDescriptor is the mandatory terminal tool. Its args carry at
// minimum a "message" field; the loop's return value is whatever this
// tool returns.
func terminateDescriptor() Descriptor {
	d := NewDescriptor(
		TerminateName,
		"End the agent loop and return a final message to the caller.",
		Schema{
			Type: "object",
			Properties: map[string]Property{
				"message": {Type: "string", Description: "Final message to return to the caller."},
				"error":   {Type: "string", Description: "Optional error description, if the loop is terminating abnormally."},
			},
			Required: []string{"message"},
		},
		func(actx *Context, args map[string]any) (any, error) {
			out := map[string]any{"message": args["message"]}
			if errMsg, ok := args["error"]; ok {
				out["error"] = errMsg
			}
			return out, nil
		},
	)
	return d.WithTerminal(true).WithTags("core")
}
