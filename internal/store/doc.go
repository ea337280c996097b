// Package store defines interfaces for data persistence operations,
// the sentinel errors implementations return, and the transaction helpers
// services use to group store calls atomically.
package store
