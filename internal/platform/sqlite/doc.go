// Package sqlite provides SQLite implementations of the internal/store
// interfaces for single-node deployments. Queries are mapped with sqlx over
// the mattn/go-sqlite3 driver.
//
// SQLite has no SELECT ... FOR UPDATE. Connections opened with DSN take the
// write lock at BEGIN (_txlock=immediate), so a read-modify-write transaction
// never interleaves with another writer; the version column guards any write
// made outside a transaction.
package sqlite
