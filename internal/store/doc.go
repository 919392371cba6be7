// Package store defines interfaces for data persistence operations.
// These interfaces abstract the underlying data storage mechanism from
// the application's core logic, allowing scheduling rules to remain
// independent of specific database technologies or persistence details.
//
// The PostgreSQL and SQLite implementations live under internal/platform;
// an in-memory implementation for tests lives in internal/mocks.
package store
