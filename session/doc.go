// Copyright (c) RLMBox Authors.
// Licensed under the MIT License.

/*
Package session provides the caller-owned session registry.

The sandbox core is stateless between executions; what persists across calls
of one orchestration (creation time, execution count, cumulative delegation
count) lives in a Store. Two backends are provided: an in-process MemoryStore
for single-instance deployments and tests, and a Redis-backed RedisStore for
distributed production deployments.
*/
package session
