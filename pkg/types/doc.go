// Package types defines the StorageAdapter interface, the Document record
// type, configuration, change events, query options, constraints, and the
// standard error values shared by the chartstore engine and its callers.
package types
