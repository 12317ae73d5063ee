// Package types defines the core data model shared across stash:
// entries and their items, the index metadata views, the operation
// journal records, and the filesystem abstraction.
package types
