// Copyright (c) RLMBox Authors.
// Licensed under the MIT License.

/*
Package handlers implements the HTTP request handlers of the sandbox service.

  - ExecuteHandler — POST /execute: runs one script in the sandbox
  - HealthHandler  — /health, /healthz, /ready with pluggable checks

Execution responses use the plain wire format the orchestrator expects
(types.ExecuteResponse); transport-level failures use a small structured
error envelope with the types.ErrorCode mapped to an HTTP status.
*/
package handlers
