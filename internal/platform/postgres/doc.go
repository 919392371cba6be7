// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. Queries run through
// the pgx stdlib driver, and pgconn error codes are translated into store errors
// by MapError.
package postgres
