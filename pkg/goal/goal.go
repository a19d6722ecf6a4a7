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

// Package goal defines the static, per-session objectives rendered into
// prompts and scored by the relevance filter.
package goal

// Goal is static for the duration of one session. It is used only for
// prompt rendering and for scoring in the relevance filter — it carries no
// behavior of its own.
type Goal struct {
	Name        string
	Description string
	Priority    int
}
