// Package pg wires the application to PostgreSQL: a pgx connection pool with
// startup retries, a transaction helper for multi-store writes, goose schema
// migrations bridged through database/sql, and error classification helpers
// (not-found, duplicate key, foreign key violation) used by the stores to
// translate constraint failures into domain errors.
package pg
