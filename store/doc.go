// Package store persists agents, workflows, and workflow steps behind a
// GORM-backed repository. Entities reference each other through plain
// foreign-key identifiers; callers that need related records perform
// explicit repository lookups instead of walking a live object graph.
package store
