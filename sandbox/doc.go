// Copyright (c) RLMBox Authors.
// Licensed under the MIT License.

/*
Package sandbox executes model-generated scripts inside a restricted Starlark
environment with bounded recursive delegation.

# Pipeline

One execution is a single-shot unit:

	Validate → build restricted scope → run script → Result

The Validator parses the script with go.starlark.net/syntax and rejects
dangerous constructs (load statements, blocked capability names, reflective
underscore members, string-literal getattr bypasses) before anything runs.
Validated scripts execute via starlark.ExecFileOptions against a scope that
contains exactly the context accessors, the delegation builtin rlm_call, and
a pre-seeded result slot. The Starlark universe supplies only pure
computation; file, process, and import capabilities do not exist in the
dialect, so the validator acts as fast-reject defense-in-depth rather than
the sole barrier.

# Delegation

rlm_call is served by a Broker holding per-execution call/depth budgets. Every
failure mode (budget exhaustion, timeout, transport error) resolves to an
in-band token string returned to the script, never a fault, so generated
logic can branch on it.

The package is stateless across executions: Engine is shared, but each
Execute call owns a private Broker and ContextStore snapshot, so concurrent
executions need no locking.

Containment is best-effort allow/deny layering intended to run inside an
already-isolated process boundary; it is not a substitute for OS-level
isolation.
*/
package sandbox
