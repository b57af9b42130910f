// Package types defines the shared vocabulary of the agentweave service:
// workflow and step lifecycle statuses and the structured error type used
// across package boundaries.
package types
