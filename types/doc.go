// Copyright (c) RLMBox Authors.
// Licensed under the MIT License.

/*
Package types defines the wire and error types shared across rlmbox packages.

# Core types

  - ExecuteRequest / ExecuteResponse — the sandbox execution protocol
  - RecurseRequest / RecurseResponse — the delegation sub-protocol spoken
    between a running script and the external orchestrator
  - ContextMap — an order-preserving string→string mapping; JSON object key
    order survives a decode/encode round trip
  - Error / ErrorCode — structured errors with retryability and HTTP mapping
*/
package types
