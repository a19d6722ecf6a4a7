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

import "errors"

// ErrUnknownTool is returned by Registry.Get when the requested name has
// no descriptor in the current snapshot.
var ErrUnknownTool = errors.New("action: unknown tool")

// ErrMissingTerminator is returned when a registry is asked to guarantee
// a terminal tool but the built-in catalogue has none.
var ErrMissingTerminator = errors.New("action: catalogue has no terminal tool")

// ErrDuplicateName is returned when a catalogue registration collides
// with an existing built-in name.
var ErrDuplicateName = errors.New("action: duplicate tool name")
