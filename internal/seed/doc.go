// Package seed loads the embedded starter dataset into an empty store.
// Fixture ids are stable strings, so a forced reseed reproduces the same
// keys every time.
package seed
