// Package workflow implements the orchestration engine: validation of
// user-defined step graphs, sequential and level-parallel scheduling,
// dependency-context message enhancement, and aggregation of per-step
// outcomes into one workflow status.
//
// The engine treats the conversational agent backend as an opaque external
// service behind the Invoker interface and persists state through the
// Repository contract. A workflow run moves running -> {completed |
// partial_success | failed}; individual steps move pending -> running ->
// {success | error | skipped}.
package workflow
