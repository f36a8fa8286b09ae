// Copyright 2025 Poiesic Systems
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


// Package ai provides abstractions for the optional embedding backend.
//
// The engine only ever needs vector embeddings: vocabulary skills are embedded
// once per source file and queries are embedded live. Everything that uses
// embeddings depends on the Embedder interface so the backend can be swapped
// or disabled.
//
// # Implementation Packages
//
//   - ai/openai: langchaingo client for OpenAI and OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with call counting
//
// Public constructors in ai/openai return interface types. Test constructors
// in ai/mock return concrete types so tests can inspect CallCount and inject
// behavior through function fields.
//
// # Availability
//
// A Config without an API key is valid input to the engine but produces no
// provider: embedding-backed tiers are simply skipped.
//
//	cfg := ai.NewConfig(ai.FromEnv())
//	if cfg.Enabled() {
//	    provider, err := openai.NewProvider(cfg)
//	    ...
//	}
package ai
