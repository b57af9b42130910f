// Package agent connects the workflow engine to agent resources: the
// directory that resolves agent handles for validation, the Redis-backed
// handle cache in front of it, and the HTTP client that delivers step
// messages to the external agent invocation service.
package agent
