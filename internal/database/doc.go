// Package database provides GORM-backed connection pool management with
// health checks and transaction helpers.
// This package is internal and should not be imported by external projects.
package database
