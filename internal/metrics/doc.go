// Package metrics provides Prometheus metrics collection for the service:
// HTTP, workflow, step, cache, and database dimensions.
// This package is internal and should not be imported by external projects.
package metrics
