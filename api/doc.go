// Copyright (c) RLMBox Authors.
// Licensed under the MIT License.

/*
Package api provides the HTTP surfaces of the sandbox service: the delegation
client used by running scripts to reach the orchestrator, and (in the
handlers subpackage) the request handlers the orchestrator calls.

The execution protocol is POST /execute with an ExecuteRequest body; the
delegation sub-protocol is POST <callback_url>/rlm/recurse with a
RecurseRequest body. Both speak the wire types from the types package.
*/
package api
