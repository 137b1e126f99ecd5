// Package integration provides integration tests that verify the snapshot
// backends against real Redis, PostgreSQL and MongoDB instances started with
// testcontainers.
//
// Run with: go test -tags=integration ./tests/integration/...
package integration
