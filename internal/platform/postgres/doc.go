// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. It handles query
// execution, row locking, error mapping between driver errors and store
// sentinels, and ships the schema migrations applied by goose.
package postgres
