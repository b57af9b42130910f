// Package handlers implements the HTTP endpoints of the agentweave
// service: workflow execution and queries, plus health probes. All
// responses share one JSON envelope.
package handlers
