// Copyright (c) RLMBox Authors.
// Licensed under the MIT License.

// Command rlmbox runs the RLM sandbox service: a restricted execution
// environment for model-generated scripts with bounded recursive delegation
// back to an orchestrator.
package main
